package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/inventory"
	"github.com/nfrund/sparx/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureInventory records what the handler passes to the service.
type captureInventory struct {
	input    inventory.ProductInput
	fileName string
	fileType string
	content  string
}

func (s *captureInventory) CreateProduct(ctx context.Context, owner *domain.User, in inventory.ProductInput, img *inventory.Upload) (*domain.Product, error) {
	s.input = in
	if img != nil {
		s.fileName, s.fileType = img.FileName, img.ContentType
		data, err := io.ReadAll(img.Content)
		if err != nil {
			return nil, err
		}
		s.content = string(data)
	}
	return &domain.Product{ID: domain.NewRecordID(domain.ProductTable, "p1"), UserID: owner.ID, Name: in.Name}, nil
}

func (s *captureInventory) ListProducts(ctx context.Context, owner *domain.User) ([]*domain.Product, error) {
	return nil, nil
}

func (s *captureInventory) GetProduct(ctx context.Context, owner *domain.User, id string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *captureInventory) UpdateProduct(ctx context.Context, owner *domain.User, id string, in inventory.ProductInput, img *inventory.Upload) (*domain.Product, error) {
	s.input = in
	return &domain.Product{ID: domain.NewRecordID(domain.ProductTable, id), UserID: owner.ID}, nil
}

func (s *captureInventory) DeleteProduct(ctx context.Context, owner *domain.User, id string) error {
	return nil
}

func newProductContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserContextKey, &domain.User{ID: domain.NewRecordID(domain.UserTable, "u1")})
	return c, rec
}

func TestCreateProduct_Multipart(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Widget"))
	require.NoError(t, w.WriteField("quantity", "4"))
	require.NoError(t, w.WriteField("price", "2.5"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="../../etc/w.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	c, rec := newProductContext(t, req)

	svc := &captureInventory{}
	require.NoError(t, NewProductHandler(svc).CreateProduct(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Widget", svc.input.Name)
	assert.Equal(t, "4", svc.input.Quantity)
	assert.Equal(t, "2.5", svc.input.Price)
	assert.Equal(t, "w.jpg", svc.fileName)
	assert.Equal(t, "image/jpeg", svc.fileType)
	assert.Equal(t, "jpeg-bytes", svc.content)
}

func TestUpdateProduct_JSONWithoutImage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/products/p1", strings.NewReader(`{"price":12.75,"quantity":"2"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := newProductContext(t, req)
	c.SetParamNames("id")
	c.SetParamValues("p1")

	svc := &captureInventory{}
	require.NoError(t, NewProductHandler(svc).UpdateProduct(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12.75", svc.input.Price)
	assert.Equal(t, "2", svc.input.Quantity)
	assert.Empty(t, svc.fileName)
}

func TestProductHandlers_RequireUser(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/products", nil), httptest.NewRecorder())

	err := NewProductHandler(&captureInventory{}).ListProducts(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		printSchema = false
		topicsOutputFormat = "table"
		topicsModuleFilter = ""
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "Sparx v"+version+"\n", run(t, "version"))
}

func TestSchemaCommand_Print(t *testing.T) {
	out := run(t, "schema", "--print")
	assert.Contains(t, out, "DEFINE INDEX IF NOT EXISTS user_email ON TABLE user FIELDS email UNIQUE;")
	assert.Equal(t, 7, strings.Count(out, ";\n"))
}

func TestTopicsCommand(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out := run(t, "topics")
		assert.Contains(t, out, "auth.user.registered")
		assert.Contains(t, out, "support.message.sent")
	})

	t.Run("json filtered by module", func(t *testing.T) {
		out := run(t, "topics", "--format", "json", "--module", "inventory")
		var list []topicDisplay
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		require.Len(t, list, 3)
		for _, topic := range list {
			assert.Equal(t, "inventory", topic.Module)
		}
	})

	t.Run("unknown module", func(t *testing.T) {
		assert.Contains(t, run(t, "topics", "--module", "billing"), "No topics found")
	})
}

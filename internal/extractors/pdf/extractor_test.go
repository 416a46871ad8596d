package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
}

func TestExtract_MissingFile(t *testing.T) {
	file := domain.SourceFile{
		Name: "gone.pdf",
		Path: filepath.Join(t.TempDir(), "gone.pdf"),
	}

	doc, err := New().Extract(context.Background(), file)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, doc)
}

func TestExtract_NotAPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o600))

	doc, err := New().Extract(context.Background(), domain.SourceFile{Name: "fake.pdf", Path: path})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Nil(t, doc)
}

func TestExtract_TruncatedPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trunc.pdf")
	// A valid header with nothing behind it.
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))

	_, err := New().Extract(context.Background(), domain.SourceFile{Name: "trunc.pdf", Path: path})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

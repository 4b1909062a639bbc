package zugferd_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/parser/zugferd"
)

func TestNewExtractor(t *testing.T) {
	extractor := zugferd.NewExtractor()
	require.NotNil(t, extractor)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	extractor := zugferd.NewExtractor()

	_, err := extractor.Extract(bytes.NewReader([]byte("not a pdf")))
	require.Error(t, err)
	var parseErr *model.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestExtractBytesRejectsEmpty(t *testing.T) {
	extractor := zugferd.NewExtractor()

	_, err := extractor.ExtractBytes(nil)
	assert.Error(t, err)
}

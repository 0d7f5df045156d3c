package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecognitionExtractsWrappedJSON(t *testing.T) {
	result, ok := parseRecognition("好的，识别结果如下：\n```json\n{\"category\":\"电子产品\",\"tags\":[\"黑色\",\"耳机\"],\"description\":\"一副黑色无线耳机\"}\n```")
	require.True(t, ok)
	assert.Equal(t, "电子产品", result.Category)
	assert.Equal(t, []string{"黑色", "耳机"}, result.Tags)
	assert.Equal(t, "一副黑色无线耳机", result.Description)
}

func TestParseRecognitionRejectsUnusableAnswers(t *testing.T) {
	_, ok := parseRecognition("抱歉，无法识别该图片")
	assert.False(t, ok)

	_, ok = parseRecognition("{\"tags\":[]}")
	assert.False(t, ok)

	_, ok = parseRecognition("{not json}")
	assert.False(t, ok)
}

func TestParsePagination(t *testing.T) {
	page, size := parsePagination("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = parsePagination("3", "50")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	page, size = parsePagination("-1", "1000")
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}

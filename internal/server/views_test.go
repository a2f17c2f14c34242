package server

import (
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"Привет, мир", 7, "Привет…"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateChars(tt.in, tt.n), tt.in)
	}
}

func TestLinebreaksBR(t *testing.T) {
	got := linebreaksBR("line one\r\n<b>two</b>\nthree")
	assert.Equal(t, template.HTML("line one<br>&lt;b&gt;two&lt;/b&gt;<br>three"), got)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "7 March 2025", formatDate(time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC)))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	assert.Equal(t, "def", GetEnvString("HABEROZET_TEST_STR", "def"))

	t.Setenv("HABEROZET_TEST_STR", "değer")
	assert.Equal(t, "değer", GetEnvString("HABEROZET_TEST_STR", "def"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 7},
		{"42", 42},
		{" 12 ", 12},
		{"-3", -3},
		{"abc", 7},
		{"4.5", 7},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("HABEROZET_TEST_INT", tt.raw)
			assert.Equal(t, tt.want, GetEnvInt("HABEROZET_TEST_INT", 7))
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("HABEROZET_TEST_FLOAT", "2.5")
	assert.Equal(t, 2.5, GetEnvFloat("HABEROZET_TEST_FLOAT", 1))

	t.Setenv("HABEROZET_TEST_FLOAT", "iki")
	assert.Equal(t, 1.0, GetEnvFloat("HABEROZET_TEST_FLOAT", 1))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", true},
		{"false", false},
		{"0", false},
		{"TRUE", true},
		{"evet", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("HABEROZET_TEST_BOOL", tt.raw)
			assert.Equal(t, tt.want, GetEnvBool("HABEROZET_TEST_BOOL", true))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("HABEROZET_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("HABEROZET_TEST_DUR", time.Minute))

	t.Setenv("HABEROZET_TEST_DUR", "90")
	assert.Equal(t, time.Minute, GetEnvDuration("HABEROZET_TEST_DUR", time.Minute))
}

func TestGetEnvStringList(t *testing.T) {
	def := []string{"https://default.example.com/rss"}

	assert.Equal(t, def, GetEnvStringList("HABEROZET_TEST_LIST", def))

	t.Setenv("HABEROZET_TEST_LIST", " https://a.example.com/rss , ,https://b.example.com/atom ")
	assert.Equal(t,
		[]string{"https://a.example.com/rss", "https://b.example.com/atom"},
		GetEnvStringList("HABEROZET_TEST_LIST", def))

	t.Setenv("HABEROZET_TEST_LIST", " , ")
	assert.Equal(t, def, GetEnvStringList("HABEROZET_TEST_LIST", def))
}

package locale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func siteLocales(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet([]string{"en", "cn", "pt-BR"}, "en", map[string]string{"cn": "zh-CN"})
	require.NoError(t, err)
	return s
}

func TestNewSet_Validation(t *testing.T) {
	_, err := NewSet(nil, "en", nil)
	require.Error(t, err)

	_, err = NewSet([]string{"en", "cn"}, "fr", nil)
	require.Error(t, err, "default must be a member")

	_, err = NewSet([]string{"en", "../x"}, "en", nil)
	require.Error(t, err, "codes must be safe path components")
}

func TestSet_DefaultFirst(t *testing.T) {
	s, err := NewSet([]string{"cn", "en", "cn"}, "en", map[string]string{"cn": "zh-CN"})
	require.NoError(t, err)
	require.Equal(t, []string{"en", "cn"}, s.Codes())
	require.Equal(t, "en", s.Default())
}

func TestSet_SupportsAndNormalize(t *testing.T) {
	s := siteLocales(t)

	require.True(t, s.Supports("pt-BR"))
	require.False(t, s.Supports("pt-br"), "membership is exact")
	require.False(t, s.Supports(""))

	require.Equal(t, "cn", s.Normalize("cn"))
	require.Equal(t, "en", s.Normalize("fr"))
	require.Equal(t, "en", s.Normalize(""))
	require.Equal(t, "en", s.Normalize("../../etc"))
}

func TestSet_SplitPrefix(t *testing.T) {
	s := siteLocales(t)

	tests := []struct {
		path     string
		wantCode string
		wantRest string
		wantOK   bool
	}{
		{"/pt-BR/docs/cli.md", "pt-BR", "/docs/cli.md", true},
		{"/cn", "cn", "/", true},
		{"/cn/", "cn", "/", true},
		{"/docs/introduction/getting-started.md", "", "/docs/introduction/getting-started.md", false},
		{"/", "", "/", false},
		{"/english/docs", "", "/english/docs", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, rest, ok := s.SplitPrefix(tt.path)
			require.Equal(t, tt.wantCode, code)
			require.Equal(t, tt.wantRest, rest)
			require.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSet_Negotiate(t *testing.T) {
	s := siteLocales(t)

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"nothing", "", "", "en"},
		{"cookie wins", "cn", "pt-BR", "cn"},
		{"unsupported cookie ignored", "fr", "pt-BR,pt;q=0.9", "pt-BR"},
		{"chinese browser", "", "zh-CN,zh;q=0.9,en;q=0.8", "cn"},
		{"english browser", "", "en-US,en;q=0.9", "en"},
		{"no match falls back", "", "fr-FR", "en"},
		{"garbage header", "", ";;;", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Negotiate(tt.cookie, tt.accept))
		})
	}
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := WithContext(context.Background(), "cn")
	code, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "cn", code)

	_, ok = FromContext(WithContext(context.Background(), ""))
	require.False(t, ok)
}

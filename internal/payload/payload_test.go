package payload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Kind
	}{
		{"content uri", "content://media/external/images/42", KindReference},
		{"file uri", "file:///tmp/a.png", KindReference},
		{"png data url", "data:image/png;base64,AAAA", KindImage},
		{"unvalidated subtype", "data:image/whatever;base64,", KindImage},
		{"text data url", "data:text/plain;base64,aGk=", KindText},
		{"http url", "https://example.com", KindText},
		{"plain", "hello world", KindText},
		{"empty", "", KindText},
		{"prefix not at start", " file:///tmp/a.png", KindText},
		{"uppercase scheme", "FILE:///tmp/a.png", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Classify(tt.content)
			require.Equal(t, tt.want, p.Kind)
			require.Equal(t, tt.content, p.Raw)
		})
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "text", KindText.String())
	require.Equal(t, "reference", KindReference.String())
	require.Equal(t, "image", KindImage.String())
}

func TestDataURLMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"data:image/png;base64,AAAA", "image/png", true},
		{"data:text/html,<b>hi</b>", "text/html,<b>hi</b>", true},
		{"data:image/jpeg;charset=x;base64,", "image/jpeg", true},
		{"data:", "", true},
		{"hello", "", false},
		{"Data:image/png;base64,", "", false},
	}
	for _, tt := range tests {
		got, ok := DataURLMIME(tt.in)
		require.Equal(t, tt.wantOK, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestDataURLBody(t *testing.T) {
	t.Parallel()
	require.Equal(t, "AAAA", DataURLBody("data:image/png;base64,AAAA"))
	require.Equal(t, "b,c", DataURLBody("a,b,c"))
	require.Equal(t, "nocomma", DataURLBody("nocomma"))
}

func TestDecodeBase64(t *testing.T) {
	t.Parallel()

	b, err := DecodeBase64("aGVs\nbG8=")
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))

	b, err = DecodeBase64("aGVsbG8")
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))

	_, err = DecodeBase64("!!not base64!!")
	require.Error(t, err)

	_, err = DecodeBase64("  ")
	require.Error(t, err)
}

func TestEncodeDataURL(t *testing.T) {
	t.Parallel()
	s := EncodeDataURL("image/png", []byte("hello"))
	require.Equal(t, "data:image/png;base64,aGVsbG8=", s)

	mime, ok := DataURLMIME(s)
	require.True(t, ok)
	require.Equal(t, "image/png", mime)
}

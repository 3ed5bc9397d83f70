package preview

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("%PDF-1.4\n%âãÏÓ\n"),
		{0x00, 0xff, 0x10, 0x80},
	}
	random := make([]byte, 4096)
	_, err := rand.Read(random)
	require.NoError(t, err)
	inputs = append(inputs, random)

	for _, in := range inputs {
		text := Encode(in)
		assert.Equal(t, text, Encode(in), "encoding must be deterministic")
		out, err := Decode(text)
		require.NoError(t, err)
		assert.Equal(t, len(in), len(out))
		assert.Equal(t, string(in), string(out))
	}
}

func TestEncodeKnownValue(t *testing.T) {
	assert.Equal(t, "JVBERi0=", Encode([]byte("%PDF-")))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not base64!")
	assert.Error(t, err)
}

func TestDataURIAndIFrame(t *testing.T) {
	uri := DataURI([]byte("%PDF-"))
	assert.Equal(t, "data:application/pdf;base64,JVBERi0=", uri)

	frame := IFrame(`Dev_<Ana>.pdf`, uri)
	assert.True(t, strings.HasPrefix(frame, `<iframe src="data:application/pdf;base64,JVBERi0="`))
	assert.Contains(t, frame, `width="100%" height="1000"`)
	assert.Contains(t, frame, `title="Preview of converted PDF file &#34;Dev_&lt;Ana&gt;.pdf&#34;"`)
}

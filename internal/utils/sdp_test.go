package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const answerSDP = "v=0\r\n" +
	"o=- 1 2 IN IP4 0.0.0.0\r\n" +
	"s=-\r\n" +
	"t=0 0\r\n" +
	"m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n" +
	"a=rtpmap:111 opus/48000/2\r\n" +
	"m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=rtpmap:96 VP8/90000\r\n"

func TestPatchSDPForQuality(t *testing.T) {
	out := PatchSDPForQuality(answerSDP, 2500, 1500, 3000)

	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	assert.Contains(t, lines, "b=AS:2500")
	assert.Contains(t, lines, "a=fmtp:96 x-google-min-bitrate=1500;x-google-max-bitrate=3000;x-google-start-bitrate=2250;max-fr=30;max-fs=3600")

	// bandwidth goes right after the video m-line, not the audio one
	for i, l := range lines {
		if l == "b=AS:2500" {
			assert.Equal(t, "m=video 9 UDP/TLS/RTP/SAVPF 96", lines[i-1])
		}
	}
	assert.Equal(t, 1, strings.Count(out, "b=AS:"))
	assert.True(t, strings.HasSuffix(out, "\r\n"))
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}

func TestPatchSDPForQuality_Disabled(t *testing.T) {
	out := PatchSDPForQuality(answerSDP, 0, 0, 0)
	assert.Equal(t, answerSDP, out)
}

func TestPatchSDPForQuality_LFOnly(t *testing.T) {
	sdp := strings.ReplaceAll(answerSDP, "\r\n", "\n")
	out := PatchSDPForQuality(sdp, 2500, 0, 0)
	assert.NotContains(t, out, "\r")
	assert.Contains(t, out, "m=video 9 UDP/TLS/RTP/SAVPF 96\nb=AS:2500\n")
	assert.NotContains(t, out, "a=fmtp:96")
}

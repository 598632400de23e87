package utils

import (
	"fmt"
	"strings"
)

// PatchSDPForQuality adds a bandwidth line to the video section and VP8
// bitrate hints for Chrome. The original line endings are preserved.
func PatchSDPForQuality(sdp string, asKBPS int, minKbps int, maxKbps int) string {
	eol := "\n"
	if strings.Contains(sdp, "\r\n") {
		eol = "\r\n"
	}

	lines := strings.Split(strings.TrimSuffix(sdp, eol), eol)
	out := make([]string, 0, len(lines)+2)
	inVideo := false
	insertedFmtp := false

	for _, line := range lines {
		out = append(out, line)

		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "m=") {
			inVideo = strings.HasPrefix(trim, "m=video")
			insertedFmtp = false
			if inVideo && asKBPS > 0 {
				out = append(out, fmt.Sprintf("b=AS:%d", asKBPS))
			}
			continue
		}

		if !inVideo || insertedFmtp || minKbps <= 0 || maxKbps <= 0 {
			continue
		}

		if strings.HasPrefix(trim, "a=rtpmap:") && strings.Contains(trim, "VP8/90000") {
			payload := strings.SplitN(strings.TrimPrefix(trim, "a=rtpmap:"), " ", 2)[0]
			if payload == "" {
				continue
			}
			startBitrate := (minKbps + maxKbps) / 2
			out = append(out, fmt.Sprintf("a=fmtp:%s x-google-min-bitrate=%d;x-google-max-bitrate=%d;x-google-start-bitrate=%d;max-fr=30;max-fs=3600",
				payload, minKbps, maxKbps, startBitrate))
			insertedFmtp = true
		}
	}

	return strings.Join(out, eol) + eol
}

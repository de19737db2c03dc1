package toolchain

import (
	"strings"
	"testing"
)

const (
	sumA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	sumB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestParseChecksum(t *testing.T) {
	tests := []struct {
		name    string
		content string
		entry   string
		want    string
		wantErr string
	}{
		{
			name:    "bare digest",
			content: sumA + "\n",
			want:    sumA,
		},
		{
			name:    "bsd style single line",
			content: "SHA256 (mkvtoolnix.7z) = " + sumA + "\n",
			want:    sumA,
		},
		{
			name:    "entry scoped multi line",
			content: sumB + "  other-package.tar.xz\n" + sumA + "  ffmpeg-master-latest-linux64-gpl.tar.xz\n",
			entry:   "ffmpeg-master-latest-linux64-gpl.tar.xz",
			want:    sumA,
		},
		{
			name:    "entry match is case insensitive",
			content: sumA + "  MKVToolNix.7z\n",
			entry:   "mkvtoolnix.7z",
			want:    sumA,
		},
		{
			name:    "uppercase digest is lowered",
			content: strings.ToUpper(sumA) + "  pkg.zip\n",
			entry:   "pkg.zip",
			want:    sumA,
		},
		{
			name:    "entry not found",
			content: sumA + "  something-else.zip\n",
			entry:   "pkg.zip",
			wantErr: "no line matching entry",
		},
		{
			name:    "no digest at all",
			content: "not a checksum file\n",
			wantErr: "no sha256 token",
		},
		{
			name:    "ambiguous without entry",
			content: sumA + "  a.zip\n" + sumB + "  b.zip\n",
			wantErr: "ambiguous",
		},
		{
			name:    "repeated identical digest is fine",
			content: sumA + "  a.zip\n" + sumA + "  a.zip.bak\n",
			want:    sumA,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseChecksum(tc.content, tc.entry)
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got digest %q", tc.wantErr, got)
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("error %q does not contain %q", err.Error(), tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("digest = %q, want %q", got, tc.want)
			}
		})
	}
}

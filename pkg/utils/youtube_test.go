package utils

import "testing"

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=abc123&t=42s", "abc123", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"short link with query", "https://youtu.be/abc123?t=10", "abc123", false},
		{"embed URL", "https://www.youtube.com/embed/abc123", "abc123", false},
		{"shorts URL", "https://www.youtube.com/shorts/abc123", "abc123", false},
		{"watch without id", "https://www.youtube.com/watch", "", true},
		{"unrelated host", "https://example.com/watch?v=abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractYouTubeID(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got id %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractYouTubeID failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("id = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsYouTubeURL(t *testing.T) {
	if !IsYouTubeURL("https://www.youtube.com/watch?v=abc") {
		t.Error("youtube.com watch URL should be recognized")
	}
	if !IsYouTubeURL("https://youtu.be/abc") {
		t.Error("youtu.be URL should be recognized")
	}
	if IsYouTubeURL("https://vimeo.com/12345") {
		t.Error("vimeo URL should not be recognized")
	}
	if IsYouTubeURL("not a url at all ://") {
		t.Error("garbage should not be recognized")
	}
}

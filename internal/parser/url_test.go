package parser

import "testing"

func TestHostnameFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "valid url",
			url:  "https://example.com/path",
			want: "example.com",
		},
		{
			name: "url with port",
			url:  "https://example.com:8080/path",
			want: "example.com:8080",
		},
		{
			name: "invalid url",
			url:  "not a url",
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HostnameFromURL(tt.url)
			if got != tt.want {
				t.Errorf("HostnameFromURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "valid url", url: "https://example.com/a/b.jpg", want: "/a/b.jpg"},
		{name: "invalid url", url: "not a url", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PathFromURL(tt.url)
			if got != tt.want {
				t.Errorf("PathFromURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

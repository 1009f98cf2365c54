package api

import "testing"

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/api/bookmarks?limit=10&before=4", "/api/bookmarks"},
		{"/api/bookmarks/5", "/api/bookmarks/{id}"},
		{"/api/folders/move_in/2/7", "/api/folders/move_in/{id}/{id}"},
		{"/api/folders", "/api/folders"},
	}

	for _, tt := range tests {
		if got := endpointLabel(tt.path); got != tt.want {
			t.Errorf("endpointLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

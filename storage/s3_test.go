package storage

import "testing"

func TestPhotoKey(t *testing.T) {
	cases := []struct {
		propertyID  string
		index       int
		contentType string
		want        string
	}{
		{"vrbo:4481234", 0, "image/jpeg", "photos/vrbo/4481234/0.jpg"},
		{"airbnb:stay-881203", 3, "image/png", "photos/airbnb/stay-881203/3.png"},
		{"vacasa:FL-2201", 1, "image/webp", "photos/vacasa/FL-2201/1.webp"},
		{"vrbo:4481234", 2, "application/octet-stream", "photos/vrbo/4481234/2"},
		{"no-source-prefix", 0, "image/gif", "photos/no-source-prefix/0.gif"},
	}

	for _, c := range cases {
		if got := PhotoKey(c.propertyID, c.index, c.contentType); got != c.want {
			t.Fatalf("PhotoKey(%q, %d, %q) = %q, want %q", c.propertyID, c.index, c.contentType, got, c.want)
		}
	}
}

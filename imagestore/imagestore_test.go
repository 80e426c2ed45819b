package imagestore

import (
	"regexp"
	"testing"
)

func TestPublicURLObjectFromURLRoundTrip(t *testing.T) {
	s := New(nil)

	url := s.PublicURL("food_bk", "u1_1714500000000.jpg")
	want := "https://storage.googleapis.com/food_bk/u1_1714500000000.jpg"
	if url != want {
		t.Fatalf("PublicURL returned %q; want %q", url, want)
	}

	object, ok := ObjectFromURL(url, "food_bk")
	if !ok {
		t.Fatalf("ObjectFromURL(%q, food_bk) reported no match", url)
	}
	if object != "u1_1714500000000.jpg" {
		t.Errorf("ObjectFromURL returned %q; want u1_1714500000000.jpg", object)
	}
}

func TestObjectFromURLNoMatch(t *testing.T) {
	testCases := []struct {
		name   string
		url    string
		bucket string
	}{
		{
			name:   "wrong bucket",
			url:    "https://storage.googleapis.com/food_bk/u1_1.jpg",
			bucket: "user_bk",
		},
		{
			name:   "empty url",
			url:    "",
			bucket: "food_bk",
		},
		{
			name:   "foreign provider",
			url:    "https://example.com/images/u1_1.jpg",
			bucket: "food_bk",
		},
		{
			name:   "bucket with empty object",
			url:    "https://storage.googleapis.com/food_bk/",
			bucket: "food_bk",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if object, ok := ObjectFromURL(tc.url, tc.bucket); ok {
				t.Errorf("ObjectFromURL(%q, %q) = (%q, true); want no match", tc.url, tc.bucket, object)
			}
		})
	}
}

func TestObjectNameFormats(t *testing.T) {
	food := FoodObjectName("u1", "dinner.jpg")
	if ok, _ := regexp.MatchString(`^u1_\d+\.jpg$`, food); !ok {
		t.Errorf("FoodObjectName returned %q; want u1_{millis}.jpg", food)
	}

	profile := ProfileObjectName("u1", "me.png")
	if ok, _ := regexp.MatchString(`^u1-\d+\.png$`, profile); !ok {
		t.Errorf("ProfileObjectName returned %q; want u1-{millis}.png", profile)
	}

	register := RegisterObjectName("/tmp/avatar.png")
	if ok, _ := regexp.MatchString(`^\d+_avatar\.png$`, register); !ok {
		t.Errorf("RegisterObjectName returned %q; want {millis}_avatar.png", register)
	}
}

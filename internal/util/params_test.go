package util_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func TestParsePathID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name  string
		value string
		want  uint
		ok    bool
	}{
		{"valid id", "42", 42, true},
		{"not a number", "abc", 0, false},
		{"zero is invalid", "0", 0, false},
		{"negative", "-1", 0, false},
		{"empty", "", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(recorder)
			ctx.Params = gin.Params{{Key: "levelId", Value: tc.value}}

			id, ok := util.ParsePathID(ctx, "levelId")
			if ok != tc.ok || id != tc.want {
				t.Fatalf("ParsePathID(%q) = (%d, %v), want (%d, %v)", tc.value, id, ok, tc.want, tc.ok)
			}
			if !tc.ok && recorder.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 response, got %d", recorder.Code)
			}
		})
	}
}

package backend

import (
	"encoding/json"
	"testing"
)

func TestNormalizeDetail(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain string", `"Department 'Billing' already exists in this branch"`, "Department 'Billing' already exists in this branch"},
		{"field errors", `[{"loc":["body","username"],"msg":"field required","type":"missing"},{"loc":["query","limit"],"msg":"must be positive","type":"value_error"}]`, "username: field required; limit: must be positive"},
		{"loc without field", `[{"loc":["body"],"msg":"invalid json","type":"json_invalid"}]`, "invalid json"},
		{"loc with index", `[{"loc":["body","emails",2],"msg":"invalid email","type":"value_error"}]`, "emails: invalid email"},
		{"object with message", `{"message":"quota exceeded","code":42}`, "quota exceeded"},
		{"nested object", `{"password":["too short","needs a digit"],"email":{"msg":"taken"}}`, "email: taken; password: too short; needs a digit"},
		{"empty string", `""`, "validation failed"},
		{"empty array", `[]`, "validation failed"},
		{"null", `null`, "validation failed"},
		{"number", `404`, "404"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeDetail(json.RawMessage(tc.raw)); got != tc.want {
				t.Fatalf("NormalizeDetail(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDetailFromBody(t *testing.T) {
	if got := detailFromBody([]byte(`{"detail":"Access denied"}`)); got != "Access denied" {
		t.Fatalf("unexpected detail %q", got)
	}
	if got := detailFromBody([]byte(`<html>oops</html>`)); got != "" {
		t.Fatalf("non-JSON bodies have no detail, got %q", got)
	}
	if got := detailFromBody([]byte(`{"error":"x"}`)); got != "" {
		t.Fatalf("bodies without detail have no detail, got %q", got)
	}
}

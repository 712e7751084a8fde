package repofs

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"gs://b/o", KindGCS},
		{"s3://b/o", KindS3},
		{"as://acct.blob.core.windows.net/c/o", KindAzure},
		{"/tmp/x", KindLocal},
		{"relative/path", KindLocal},
		{"", KindLocal},
		{"gs:/not-a-scheme", KindLocal},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStripScheme(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"gs://bucket/obj", "bucket/obj"},
		{"s3://bucket", "bucket"},
		{"as://", ""},
		{"/tmp/x", "/tmp/x"},
	}
	for _, tt := range tests {
		if got := stripScheme(tt.path); got != tt.want {
			t.Errorf("stripScheme(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindGCS.String() != "gcs" || KindS3.String() != "s3" || KindAzure.String() != "azure" || KindLocal.String() != "local" {
		t.Error("unexpected kind names")
	}
}

package detector

import (
	"testing"
)

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{name: "empty text", text: "", wantOK: false},
		{name: "english label", text: "Create your free account in less than a minute.", wantCode: "en", wantOK: true},
		{name: "french label", text: "Créez votre compte gratuit en moins d'une minute.", wantCode: "fr", wantOK: true},
		{name: "german label", text: "Erstellen Sie Ihr kostenloses Konto in weniger als einer Minute.", wantCode: "de", wantOK: true},
		{name: "ukrainian label", text: "Створіть безкоштовний обліковий запис менш ніж за хвилину.", wantCode: "uk", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_Matches(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
		lang string
		want bool
	}{
		{name: "short text always matches", text: "Bonjour", lang: "de", want: true},
		{name: "no language", text: "Créez votre compte gratuit en moins d'une minute.", lang: "", want: true},
		{name: "same language", text: "Créez votre compte gratuit en moins d'une minute.", lang: "fr", want: true},
		{name: "region is ignored", text: "Create your free account in less than a minute.", lang: "EN-GB", want: true},
		{name: "wrong language", text: "Create your free account in less than a minute.", lang: "fr", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Matches(tt.text, tt.lang)
			if got != tt.want {
				t.Errorf("Matches(%q, %q) = %v (%v), want %v", tt.text, tt.lang, got, err, tt.want)
			}
			if !got && err == nil {
				t.Error("expected an explanation for a mismatch")
			}
		})
	}
}

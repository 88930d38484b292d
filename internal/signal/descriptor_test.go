package signal

import (
	"errors"
	"testing"
)

func TestNewDescriptor(t *testing.T) {
	t.Run("accepts template with placeholder", func(t *testing.T) {
		d, err := NewDescriptor("{base}.VAL")
		if err != nil {
			t.Fatalf("NewDescriptor() error = %v", err)
		}
		if d.Template() != "{base}.VAL" {
			t.Errorf("Template() = %q, want %q", d.Template(), "{base}.VAL")
		}
		if d.Writable() {
			t.Error("Writable() = true for default descriptor")
		}
	})

	t.Run("rejects template without placeholder", func(t *testing.T) {
		templates := []string{"", "VAL", "base.VAL", "{bas}.VAL", "XF:Mtr.VAL"}
		for _, tmpl := range templates {
			_, err := NewDescriptor(tmpl)
			if !errors.Is(err, ErrMissingPlaceholder) {
				t.Errorf("NewDescriptor(%q) error = %v, want ErrMissingPlaceholder", tmpl, err)
			}
		}
	})

	t.Run("options configure capability and channel config", func(t *testing.T) {
		d, err := NewDescriptor("{base}Gain",
			Writable(), WithReadback(), StringValued(), WithDoc("detector gain"))
		if err != nil {
			t.Fatalf("NewDescriptor() error = %v", err)
		}
		if !d.Writable() {
			t.Error("Writable() = false")
		}
		cfg := d.ChannelConfig()
		if !cfg.Writable || !cfg.HasReadback || !cfg.String {
			t.Errorf("ChannelConfig() = %+v, want writable readback string", cfg)
		}
		if d.Doc() != "detector gain" {
			t.Errorf("Doc() = %q, want %q", d.Doc(), "detector gain")
		}
	})
}

func TestMustDescriptor(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustDescriptor did not panic on invalid template")
		}
	}()
	MustDescriptor("no-placeholder")
}

func TestDescriptor_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		template string
		base     string
		want     string
	}{
		{"suffix template", "{base}.VAL", "XF:31IDA{Tbl-Ax:X1}Mtr", "XF:31IDA{Tbl-Ax:X1}Mtr.VAL"},
		{"placeholder mid-template", "BL:{base}:Gain", "Det1", "BL:Det1:Gain"},
		{"repeated placeholder", "{base}:Sts-{base}", "A", "A:Sts-A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MustDescriptor(tt.template)
			if got := d.Resolve(tt.base); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

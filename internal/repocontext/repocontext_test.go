package repocontext

import "testing"

func TestDefaultDir(t *testing.T) {
	if got := Dir(); got != ".ugit" {
		t.Errorf("got %q, want .ugit", got)
	}
}

func TestSetDefault(t *testing.T) {
	orig := Dir()
	defer SetDefault(orig)

	SetDefault("/tmp/myrepo/.ugit")
	if got := Dir(); got != "/tmp/myrepo/.ugit" {
		t.Errorf("got %q, want /tmp/myrepo/.ugit", got)
	}
}

func TestWithOverridesAndRestores(t *testing.T) {
	before := Dir()

	var observed string
	err := With("/other/.ugit", func() error {
		observed = Dir()
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if observed != "/other/.ugit" {
		t.Errorf("inside With: got %q, want /other/.ugit", observed)
	}
	if got := Dir(); got != before {
		t.Errorf("after With: got %q, want restored %q", got, before)
	}
}

func TestWithNestsCorrectly(t *testing.T) {
	before := Dir()

	err := With("/outer/.ugit", func() error {
		return With("/inner/.ugit", func() error {
			if Dir() != "/inner/.ugit" {
				t.Errorf("nested With: got %q", Dir())
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested With failed: %v", err)
	}
	if Dir() != before {
		t.Errorf("after nested With: got %q, want %q", Dir(), before)
	}
}

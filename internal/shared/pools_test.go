package shared

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadPools(t *testing.T) {
	write := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write pools file: %v", err)
		}
		return path
	}

	t.Run("TOML", func(t *testing.T) {
		path := write(t, "pools.toml", `mode = "label"

[[pools]]
name = "Warp"
keys = ["Warp Records"]

[[pools]]
keys = ["Ninja Tune", "Big Dada"]
`)
		pf, err := LoadPools(path)
		if err != nil {
			t.Fatalf("LoadPools() error = %v", err)
		}
		if pf.Mode != "label" {
			t.Errorf("mode = %q, want label", pf.Mode)
		}
		want := []PoolSpec{
			{Name: "Warp", Keys: []string{"Warp Records"}},
			{Keys: []string{"Ninja Tune", "Big Dada"}},
		}
		if !reflect.DeepEqual(pf.Pools, want) {
			t.Errorf("pools = %+v, want %+v", pf.Pools, want)
		}
	})

	t.Run("YAML", func(t *testing.T) {
		path := write(t, "pools.yaml", `mode: artist
pools:
  - name: first
    keys: [a1, a2]
  - keys: [a3]
`)
		pf, err := LoadPools(path)
		if err != nil {
			t.Fatalf("LoadPools() error = %v", err)
		}
		if pf.Mode != "artist" || len(pf.Pools) != 2 {
			t.Fatalf("unexpected pools file %+v", pf)
		}
		if pf.Pools[0].Name != "first" || !reflect.DeepEqual(pf.Pools[0].Keys, []string{"a1", "a2"}) {
			t.Errorf("unexpected first pool %+v", pf.Pools[0])
		}
	})

	t.Run("Formats Share Keys", func(t *testing.T) {
		fromTOML, err := LoadPools(write(t, "pools.toml", "mode = \"label\"\n\n[[pools]]\nname = \"w\"\nkeys = [\"Warp\"]\n"))
		if err != nil {
			t.Fatalf("TOML: %v", err)
		}
		fromYAML, err := LoadPools(write(t, "pools.yml", "mode: label\npools:\n  - name: w\n    keys: [Warp]\n"))
		if err != nil {
			t.Fatalf("YAML: %v", err)
		}
		if !reflect.DeepEqual(fromTOML, fromYAML) {
			t.Errorf("TOML %+v != YAML %+v", fromTOML, fromYAML)
		}
	})

	t.Run("Empty Pool Is Rejected", func(t *testing.T) {
		path := write(t, "pools.toml", "[[pools]]\nname = \"x\"\nkeys = []\n")
		if _, err := LoadPools(path); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("No Pools", func(t *testing.T) {
		path := write(t, "pools.toml", "mode = \"artist\"\n")
		if _, err := LoadPools(path); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadPools(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestParsePoolFlag(t *testing.T) {
	tests := []struct {
		value   string
		want    PoolSpec
		wantErr bool
	}{
		{value: "a,b", want: PoolSpec{Keys: []string{"a", "b"}}},
		{value: " a , ,b ", want: PoolSpec{Keys: []string{"a", "b"}}},
		{value: "warp=Warp Records,Warp", want: PoolSpec{Name: "warp", Keys: []string{"Warp Records", "Warp"}}},
		{value: "Label A,x=y", want: PoolSpec{Keys: []string{"Label A", "x=y"}}},
		{value: "=Rock=Roll Records", want: PoolSpec{Keys: []string{"Rock=Roll Records"}}},
		{value: "rr==Rock=Roll", want: PoolSpec{Name: "rr", Keys: []string{"=Rock=Roll"}}},
		{value: " , ", wantErr: true},
		{value: "empty=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParsePoolFlag(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePoolFlag(%q) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"flintc/internal/driver"
	"flintc/internal/project"
)

func TestIRCacheRoundTrip(t *testing.T) {
	c, err := driver.NewIRCache(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := driver.IRKey([]byte("module"), "evm", "runtime")

	var out driver.IRPayload
	if hit, err := c.Get(key, &out); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	in := &driver.IRPayload{Target: "evm", Verification: "runtime", Text: "object \"Bank\" {}", Units: []string{"Bank"}}
	if err := c.Put(key, in); err != nil {
		t.Fatalf("put: %v", err)
	}
	hit, err := c.Get(key, &out)
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if out.Text != in.Text || len(out.Units) != 1 || out.Units[0] != "Bank" {
		t.Fatalf("payload = %+v", out)
	}

	if n, err := c.Len(); err != nil || n != 1 {
		t.Fatalf("len = %d, %v", n, err)
	}
	if n, err := c.DropAll(); err != nil || n != 1 {
		t.Fatalf("drop: %d, %v", n, err)
	}
	if hit, _ := c.Get(key, &out); hit {
		t.Fatalf("entry survived DropAll")
	}
}

func TestIRCacheRejectsForeignEntry(t *testing.T) {
	c, err := driver.NewIRCache(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := driver.IRKey([]byte("a"), "evm", "runtime")
	b := driver.IRKey([]byte("b"), "evm", "runtime")
	if err := c.Put(a, &driver.IRPayload{Target: "evm", Text: "a"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Copy a's entry to b's path, as a stale or corrupted sync might.
	src := filepath.Join(c.Dir(), "ir", a.String()[:2], a.String()+".mp")
	dst := filepath.Join(c.Dir(), "ir", b.String()[:2], b.String()+".mp")
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out driver.IRPayload
	if hit, err := c.Get(b, &out); err != nil || hit {
		t.Fatalf("foreign entry: hit=%v err=%v", hit, err)
	}
}

func TestIRKeySeparatesInputs(t *testing.T) {
	base := driver.IRKey([]byte("m"), "evm", "runtime")
	others := []project.Digest{
		driver.IRKey([]byte("m2"), "evm", "runtime"),
		driver.IRKey([]byte("m"), "move", "runtime"),
		driver.IRKey([]byte("m"), "evm", "verified"),
	}
	for i, k := range others {
		if k == base {
			t.Fatalf("variant %d shares the key", i)
		}
	}
}

func TestLoadDecodesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	doc := "decls:\n  - at: \"1:1-2:2\"\n    contract:\n      name: C\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := driver.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := len(res.Module.Contracts()); n != 1 {
		t.Fatalf("contracts = %d", n)
	}
	if string(res.Data) != doc {
		t.Fatalf("raw bytes not kept")
	}
}

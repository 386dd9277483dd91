package rules

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestCompileModifiers(t *testing.T) {
	t.Parallel()

	r, err := Compile("  \n ti./some/dir")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if r.Sense != SenseTake {
		t.Errorf("Sense=%v, want SenseTake", r.Sense)
	}
	if !r.CaseFold {
		t.Error("CaseFold=false, want true")
	}
	if r.Kind != KindPathGlob {
		t.Errorf("Kind=%v, want KindPathGlob", r.Kind)
	}
	if r.Raw != "ti./some/dir" {
		t.Errorf("Raw=%q, want modifiers kept and whitespace stripped", r.Raw)
	}
	if r.Pattern != "./some/dir" {
		t.Errorf("Pattern=%q, want matchable suffix without modifiers", r.Pattern)
	}
}

func TestCompileInvalid(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"",
		"   \n",
		"ti",
		"XYZ:foo",
		"foo/bar",
		"./",
		"t./",
		"PCRE:ab",
		"DEVICE:",
		"DEVICE:x",
		"DEVICE:3;1",
		"DEVICE:3:",
		"DEVICE:3:1:2",
		"DEVICE:3:1x",
		"INODE:1",
		"INODE:1:2",
		"INODE:1:2:",
		"INODE:1:2:3x",
	} {
		if _, err := Compile(text); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("Compile(%q) err=%v, want ErrInvalidRule", text, err)
		}
	}
}

func TestCompileDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		cmp      CompareOp
		major    uint64
		minor    uint64
		hasMinor bool
		sense    Sense
	}{
		{"DEVICE:3", CmpEqual, 3, 0, false, SenseIgnore},
		{"DEVICE:<3", CmpLess, 3, 0, false, SenseIgnore},
		{"DEVICE:<=8", CmpLess | CmpEqual, 8, 0, false, SenseIgnore},
		{"DEVICE:>=0x103", CmpEqual | CmpGreater, 0x103, 0, false, SenseIgnore},
		{"DEVICE:>010", CmpGreater, 8, 0, false, SenseIgnore},
		{"DEVICE:3:1", CmpEqual, 3, 1, true, SenseIgnore},
		{"tDEVICE:3", CmpEqual, 3, 0, false, SenseTake},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.text, func(t *testing.T) {
			t.Parallel()

			r, err := Compile(tc.text)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if r.Kind != KindDevice {
				t.Fatalf("Kind=%v, want KindDevice", r.Kind)
			}
			if r.cmp != tc.cmp || r.major != tc.major || r.minor != tc.minor || r.hasMinor != tc.hasMinor {
				t.Errorf("cmp=%v major=%d minor=%d hasMinor=%v, want %v/%d/%d/%v",
					r.cmp, r.major, r.minor, r.hasMinor, tc.cmp, tc.major, tc.minor, tc.hasMinor)
			}
			if r.Sense != tc.sense {
				t.Errorf("Sense=%v, want %v", r.Sense, tc.sense)
			}
			if r.PathDepth != 0 {
				t.Errorf("PathDepth=%d, want 0", r.PathDepth)
			}
		})
	}
}

func TestCompileInode(t *testing.T) {
	t.Parallel()

	r, err := Compile("INODE:8:1:123456")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if r.Kind != KindInode {
		t.Fatalf("Kind=%v, want KindInode", r.Kind)
	}
	if r.dev != unix.Mkdev(8, 1) {
		t.Errorf("dev=%#x, want Mkdev(8,1)=%#x", r.dev, unix.Mkdev(8, 1))
	}
	if r.inode != 123456 {
		t.Errorf("inode=%d, want 123456", r.inode)
	}
}

func TestCompilePathDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text      string
		depth     int
		unbounded bool
	}{
		{"./tmp", 1, false},
		{"./a/b", 2, false},
		{"./a/**", 2, true},
		{"./a/****", 2, true},
		{"./a/", 1, false},
		{"./a/b/", 2, false},
		{"PCRE:./home/.*~", 2, false},
	}
	for _, tc := range tests {
		r, err := Compile(tc.text)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tc.text, err)
		}
		if r.PathDepth != tc.depth {
			t.Errorf("Compile(%q).PathDepth=%d, want %d", tc.text, r.PathDepth, tc.depth)
		}
		if r.Unbounded != tc.unbounded {
			t.Errorf("Compile(%q).Unbounded=%v, want %v", tc.text, r.Unbounded, tc.unbounded)
		}
	}
}

func TestGlobMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"./a/*", "./a/b", true},
		{"./a/*", "./a/.hidden", true},
		{"./a/*", "./a/b/c", false},
		{"./a/**", "./a/b", true},
		{"./a/**", "./a/b/c", true},
		{"./a/**", "./a/b/c/d/e", true},
		{"./a/**", "./a", false},
		{"./a?c", "./abc", true},
		{"./a?c", "./ac", false},
		{"./[oa]pt", "./opt", true},
		{"./[oa]pt", "./apt", true},
		{"./[oa]pt", "./xpt", false},
		{"./[!a]pt", "./bpt", true},
		{"./[!a]pt", "./apt", false},
		{"./[]]x", "./]x", true},
		{`./a\*b`, "./a*b", true},
		{`./a\*b`, "./axb", false},
		{"./file.txt", "./file.txt", true},
		{"./file.txt", "./fileatxt", false},
		{"./sys", "./sys", true},
		{"./sys", "./system", false},
		{"./dir/", "./dir", true},
		{"./dir/", "./dir/sub", true},
		{"./dir/", "./dir/sub/file", true},
		{"./dir/", "./directory", false},
		{"i./TMP", "./tmp", true},
		{"./TMP", "./tmp", false},
		{"PCRE:./home/.*~", "./home/user/notes~", true},
		{"PCRE:./home/.*~", "./home/user/notes", false},
	}
	for _, tc := range tests {
		r, err := Compile(tc.pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tc.pattern, err)
		}
		got, err := r.matches(&Entry{Path: tc.path, Type: TypeRegular})
		if err != nil {
			t.Fatalf("matches(%q, %q): %v", tc.pattern, tc.path, err)
		}
		if got != tc.want {
			t.Errorf("matches(%q, %q)=%v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}

func TestCompileBadRegex(t *testing.T) {
	t.Parallel()

	if _, err := Compile("PCRE:./x[0-"); !errors.Is(err, ErrPatternCompile) {
		t.Fatalf("err=%v, want ErrPatternCompile", err)
	}
	if _, err := Compile("./x[0-"); !errors.Is(err, ErrPatternCompile) {
		t.Fatalf("unterminated bracket err=%v, want ErrPatternCompile", err)
	}
}

func TestScanUint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		val  uint64
		rest string
		ok   bool
	}{
		{"42", 42, "", true},
		{"42:1", 42, ":1", true},
		{"0x1f", 0x1f, "", true},
		{"010", 8, "", true},
		{"0", 0, "", true},
		{"", 0, "", false},
		{"x", 0, "x", false},
	}
	for _, tc := range tests {
		val, rest, ok := scanUint(tc.in)
		if ok != tc.ok || (ok && (val != tc.val || rest != tc.rest)) {
			t.Errorf("scanUint(%q)=(%d,%q,%v), want (%d,%q,%v)",
				tc.in, val, rest, ok, tc.val, tc.rest, tc.ok)
		}
	}
}

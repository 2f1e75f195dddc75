package main

import "testing"

func TestDiffFlagsToOptions(t *testing.T) {
	f := diffFlags{
		tableRE:       "^app_",
		onlyBoth:      true,
		keepOldTables: true,
		tolerant:      true,
	}

	opts, err := f.toOptions(false)
	if err != nil {
		t.Fatalf("toOptions: %v", err)
	}
	if opts.Refs {
		t.Errorf("expected Refs false for the diff command")
	}
	if !opts.OnlyBoth || !opts.KeepOldTables || !opts.Tolerant {
		t.Errorf("expected bool flags to carry through, got %+v", opts)
	}
	if opts.TableRE == nil || !opts.TableRE.MatchString("app_users") {
		t.Errorf("expected table-re to compile and match, got %v", opts.TableRE)
	}
}

func TestDiffFlagsToOptionsRefsMode(t *testing.T) {
	f := diffFlags{}
	opts, err := f.toOptions(true)
	if err != nil {
		t.Fatalf("toOptions: %v", err)
	}
	if !opts.Refs {
		t.Errorf("expected Refs true for the refs command")
	}
	if opts.TableRE != nil {
		t.Errorf("expected nil TableRE when no filter is set")
	}
}

func TestDiffFlagsToOptionsInvalidRegexp(t *testing.T) {
	f := diffFlags{tableRE: "("}
	if _, err := f.toOptions(false); err == nil {
		t.Fatalf("expected an error for an invalid regular expression")
	}
}

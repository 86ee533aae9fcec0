package dat

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleMameDat = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE datafile PUBLIC "-//Logiqx//DTD ROM Management Datafile//EN" "http://www.logiqx.com/Dats/datafile.dtd">
<datafile>
  <header>
    <name>MAME</name>
    <description>MAME Arcade 0.282</description>
    <version>0.282</version>
  </header>
  <machine name="sf2" runnable="yes">
    <description>Street Fighter II</description>
    <year>1991</year>
    <manufacturer>Capcom</manufacturer>
    <driver status="good"/>
  </machine>
  <machine name="sf2ce" cloneof="sf2" romof="sf2">
    <description>Street Fighter II': Champion Edition</description>
  </machine>
  <machine name="neogeo" isbios="yes">
    <description>Neo-Geo MV-6F</description>
  </machine>
  <machine name="z80" isdevice="yes" runnable="no">
    <description>Zilog Z80</description>
  </machine>
  <machine name="pinball" runnable="no"/>
</datafile>`

const sampleFBNeoDat = `<?xml version="1.0"?>
<!DOCTYPE datafile PUBLIC "-//FB Alpha//DTD ROM Management Datafile//EN" "http://www.logiqx.com/Dats/datafile.dtd">
<datafile>
  <header><name>FinalBurn Neo</name><version>1.0.0.03</version></header>
  <game name="mslug"><description>Metal Slug</description></game>
  <game name="pgm" isbios="yes"><description>PGM BIOS</description></game>
</datafile>`

func entryNamed(df *DataFile, name string) *Machine {
	for _, m := range df.Entries() {
		if m.Name == name {
			return &m
		}
	}
	return nil
}

func TestParseMameDat(t *testing.T) {
	df, err := Parse(strings.NewReader(sampleMameDat))
	if err != nil {
		t.Fatalf("expected parser to succeed, got error: %v", err)
	}
	if df.Header.Name != "MAME" || df.Header.Version != "0.282" {
		t.Fatalf("unexpected header: %+v", df.Header)
	}
	if len(df.Entries()) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(df.Entries()))
	}
	sf2 := entryNamed(df, "sf2")
	if sf2 == nil || sf2.Manufacturer != "Capcom" || sf2.Driver == nil || sf2.Driver.Status != "good" {
		t.Fatalf("unexpected sf2 entry: %+v", sf2)
	}
	if clone := entryNamed(df, "sf2ce"); clone == nil || clone.CloneOf != "sf2" || !clone.IsGame() {
		t.Fatalf("unexpected clone entry: %+v", clone)
	}
	want := []string{"neogeo", "pinball", "z80"}
	if got := df.NonGameNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("non game names = %v, want %v", got, want)
	}
}

func TestParseFBNeoDat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fbneo.dat")
	if err := os.WriteFile(path, []byte(sampleFBNeoDat), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	df, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if entryNamed(df, "mslug") == nil || entryNamed(df, "missing") != nil {
		t.Fatalf("unexpected lookup result")
	}
	if got := df.NonGameNames(); !reflect.DeepEqual(got, []string{"pgm"}) {
		t.Fatalf("non game names = %v", got)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "none.dat")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	var df *DataFile
	if df.Entries() != nil || df.NonGameNames() != nil {
		t.Fatalf("nil data file should be empty")
	}
}

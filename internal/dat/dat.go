package dat

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// DataFile is the root node of a Logiqx style DAT as shipped by MAME
// (<machine> entries) and FinalBurn Neo (<game> entries).
type DataFile struct {
	XMLName  xml.Name  `xml:"datafile"`
	Header   Header    `xml:"header"`
	Machines []Machine `xml:"machine"`
	Games    []Machine `xml:"game"`
}

// Header carries top-level metadata for the DAT.
type Header struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
	Author      string `xml:"author"`
}

// Machine is one set of the DAT.
type Machine struct {
	Name         string  `xml:"name,attr"`
	CloneOf      string  `xml:"cloneof,attr,omitempty"`
	RomOf        string  `xml:"romof,attr,omitempty"`
	IsBios       string  `xml:"isbios,attr,omitempty"`
	IsDevice     string  `xml:"isdevice,attr,omitempty"`
	IsMechanical string  `xml:"ismechanical,attr,omitempty"`
	Runnable     string  `xml:"runnable,attr,omitempty"`
	Description  string  `xml:"description"`
	Year         string  `xml:"year"`
	Manufacturer string  `xml:"manufacturer"`
	Driver       *Driver `xml:"driver"`
}

// Driver holds driver status info.
type Driver struct {
	Status string `xml:"status,attr,omitempty"`
}

// IsGame reports whether the set is something a player launches: BIOS
// sets, devices and non-runnable machines are not.
func (m *Machine) IsGame() bool {
	if strings.EqualFold(m.IsBios, "yes") || strings.EqualFold(m.IsDevice, "yes") {
		return false
	}
	return !strings.EqualFold(m.Runnable, "no")
}

// ParseFile opens and parses a DAT file.
func ParseFile(path string) (*DataFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dat %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse consumes DAT XML content from the provided reader.
func Parse(r io.Reader) (*DataFile, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false // DTD is referenced; relax strict parsing.

	var df DataFile
	if err := decoder.Decode(&df); err != nil {
		return nil, fmt.Errorf("decode dat: %w", err)
	}
	return &df, nil
}

// Entries returns machine and game entries together.
func (df *DataFile) Entries() []Machine {
	if df == nil {
		return nil
	}
	out := make([]Machine, 0, len(df.Machines)+len(df.Games))
	out = append(out, df.Machines...)
	return append(out, df.Games...)
}

// NonGameNames lists the set names that are not games, sorted.
func (df *DataFile) NonGameNames() []string {
	var out []string
	for _, m := range df.Entries() {
		if !m.IsGame() {
			out = append(out, m.Name)
		}
	}
	sort.Strings(out)
	return out
}

package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
)

// emptyField is the placeholder the SDN export uses for missing values.
const emptyField = "-0-"

var csvColumns = []string{"ent_num", "sdn_name", "sdn_type", "country"}

// ReadCSV parses a reference list with a header naming at least ent_num,
// sdn_name, sdn_type and country, in any order. Extra columns are ignored.
func ReadCSV(r io.Reader) ([]screening.ReferenceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reference csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read reference csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make([]int, len(csvColumns))
	for i, name := range csvColumns {
		pos, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("reference csv header lacks column %q", name)
		}
		cols[i] = pos
	}

	var records []screening.ReferenceRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference csv line %d: %w", line, err)
		}
		field := func(i int) string {
			if cols[i] >= len(row) {
				return ""
			}
			v := strings.TrimSpace(row[cols[i]])
			if v == emptyField {
				return ""
			}
			return v
		}

		entNum, err := strconv.ParseInt(field(0), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("reference csv line %d: bad ent_num %q", line, field(0))
		}
		name := field(1)
		if name == "" {
			return nil, fmt.Errorf("reference csv line %d: empty sdn_name", line)
		}
		records = append(records, screening.ReferenceRecord{
			EntNum:      entNum,
			SDNName:     name,
			SDNType:     field(2),
			Country:     field(3),
			CleanedName: screening.Normalize(name),
		})
	}
	return records, nil
}

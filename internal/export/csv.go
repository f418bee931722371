package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

func Write(w io.Writer, r Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header); err != nil {
		return eris.Wrap(err, "export: write CSV header")
	}
	if err := cw.Write(r.Values); err != nil {
		return eris.Wrap(err, "export: write CSV row")
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush CSV")
}

// WriteCSV writes r to path through a temp file in the same directory so a
// reader never sees a half-written artifact.
func WriteCSV(path string, r Row) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "export: create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".harvest-*.csv")
	if err != nil {
		return eris.Wrap(err, "export: create temp file")
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "export: close temp file")
	}
	return eris.Wrapf(os.Rename(tmp.Name(), path), "export: rename to %s", path)
}

package sim

import (
	"bufio"
	"encoding/json"
	"os"
)

// FileWriter writes packet and status rows to one JSONL file. Output is
// buffered; Close flushes before closing the file.
type FileWriter struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewFileWriter creates a FileWriter truncating any existing file at path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &FileWriter{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// WritePacket logs a single emitted frame.
func (f *FileWriter) WritePacket(r PacketRecord) error {
	return f.enc.Encode(r)
}

// WriteStatus logs a periodic stream summary.
func (f *FileWriter) WriteStatus(r StatusRow) error {
	return f.enc.Encode(r)
}

// Close flushes buffered rows and closes the underlying file.
func (f *FileWriter) Close() error {
	err := f.buf.Flush()
	if e := f.file.Close(); e != nil && err == nil {
		err = e
	}
	return err
}

package sim

// MultiWriter fan-outs packet and status rows to multiple writers.
type MultiWriter struct {
	writers []PacketWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...PacketWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// WritePacket sends a packet record to all writers, returning the first
// error.
func (mw *MultiWriter) WritePacket(r PacketRecord) error {
	for _, w := range mw.writers {
		if err := w.WritePacket(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStatus sends a status row to all writers, returning the first
// error.
func (mw *MultiWriter) WriteStatus(r StatusRow) error {
	for _, w := range mw.writers {
		if err := w.WriteStatus(r); err != nil {
			return err
		}
	}
	return nil
}

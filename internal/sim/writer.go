package sim

// PacketWriter is an interface to support different diagnostic sinks.
// Sink errors are logged by the streamer, never fatal to the stream.
type PacketWriter interface {
	WritePacket(PacketRecord) error
	WriteStatus(StatusRow) error
}

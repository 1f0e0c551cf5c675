package bind_group_provider

// BufferWrite is one queued upload into the buffer a provider holds at Binding.
// Offset and len(Data) must be multiples of 4.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WholeBufferWrite returns a write replacing the buffer at binding from offset 0.
//
// Parameters:
//   - provider: the provider owning the buffer
//   - binding: the binding index of the buffer
//   - data: the new contents
//
// Returns:
//   - BufferWrite: the queued write
func WholeBufferWrite(provider BindGroupProvider, binding int, data []byte) BufferWrite {
	return BufferWrite{Provider: provider, Binding: binding, Data: data}
}

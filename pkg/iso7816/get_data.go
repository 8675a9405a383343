package iso7816

// GET DATA COMMAND LOGIC (ISO 7816-4 / EMV Book 3):
// The GET DATA command (INS 'CA') retrieves a single primitive data object
// from the current application. P1-P2 carry the two-byte tag of the object.
//
// EMV places GET DATA in the proprietary class (CLA 0x80); the data objects
// reachable this way are counters and registers that live outside record
// files, such as the ATC ('9F36') or the PIN Try Counter ('9F17').

// NewGetDataCommand creates a GET DATA command for the data object
// identified by the two-byte tag in P1-P2.
func NewGetDataCommand(cla Class, tagHi, tagLo byte) *CommandAPDU {
	ins, _ := NewInstruction(INS_GET_DATA)
	return NewCommandAPDU(cla, ins, tagHi, tagLo, nil, MaxShortLe)
}

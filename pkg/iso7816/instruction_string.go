package iso7816

import "strconv"

// Code generated by "stringer -type=InsCode -output=instruction_string.go"; DO NOT EDIT.

func (i InsCode) String() string {
	str, ok := _InsCode_map[i]
	if !ok {
		return "InsCode(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return str
}

var _InsCode_map = map[InsCode]string{
	4: "INS_DEACTIVATE_FILE",
	12: "INS_ERASE_RECORD",
	14: "INS_ERASE_BINARY",
	15: "INS_ERASE_BINARY_BER",
	16: "INS_PERFORM_SCQL_OPERATION",
	18: "INS_PERFORM_TRANSACTION_OPER",
	20: "INS_PERFORM_USER_OPERATION",
	32: "INS_VERIFY",
	33: "INS_VERIFY_BER",
	34: "INS_MANAGE_SECURITY_ENVIRONMENT",
	36: "INS_CHANGE_REFERENCE_DATA",
	38: "INS_DISABLE_VERIF_REQ",
	40: "INS_ENABLE_VERIF_REQ",
	42: "INS_PERFORM_SECURITY_OPERATION",
	44: "INS_RESET_RETRY_COUNTER",
	68: "INS_ACTIVATE_FILE",
	70: "INS_GENERATE_ASYMMETRIC_KEY_PAIR",
	112: "INS_MANAGE_CHANNEL",
	130: "INS_EXTERNAL_AUTHENTICATE",
	132: "INS_GET_CHALLENGE",
	134: "INS_GENERAL_AUTHENTICATE",
	135: "INS_GENERAL_AUTHENTICATE_BER",
	136: "INS_INTERNAL_AUTHENTICATE",
	160: "INS_SEARCH_BINARY",
	161: "INS_SEARCH_BINARY_BER",
	162: "INS_SEARCH_RECORD",
	164: "INS_SELECT",
	174: "INS_GENERATE_AC",
	176: "INS_READ_BINARY",
	177: "INS_READ_BINARY_BER",
	178: "INS_READ_RECORD",
	179: "INS_READ_RECORD_BER",
	192: "INS_GET_RESPONSE",
	194: "INS_ENVELOPE",
	195: "INS_ENVELOPE_BER",
	202: "INS_GET_DATA",
	203: "INS_GET_DATA_BER",
	208: "INS_WRITE_BINARY",
	209: "INS_WRITE_BINARY_BER",
	210: "INS_WRITE_RECORD",
	214: "INS_UPDATE_BINARY",
	215: "INS_UPDATE_BINARY_BER",
	218: "INS_PUT_DATA",
	219: "INS_PUT_DATA_BER",
	220: "INS_UPDATE_RECORD",
	221: "INS_UPDATE_RECORD_BER",
	224: "INS_CREATE_FILE",
	226: "INS_APPEND_RECORD",
	228: "INS_DELETE_FILE",
	230: "INS_TERMINATE_DF",
	232: "INS_TERMINATE_EF",
	254: "INS_TERMINATE_CARD_USAGE",
}

package iso7816

import "strconv"

// Code generated by "stringer -type=StatusWord -output=status_word_string.go"; DO NOT EDIT.

func (sw StatusWord) String() string {
	str, ok := _StatusWord_map[sw]
	if !ok {
		return "StatusWord(" + strconv.FormatInt(int64(sw), 10) + ")"
	}
	return str
}

var _StatusWord_map = map[StatusWord]string{
	36864: "SW_NO_ERROR",
	25088: "SW_WARN_NO_INFO",
	25090: "SW_WARN_TRIGGERING_BY_CARD",
	25217: "SW_WARN_DATA_CORRUPTED",
	25218: "SW_WARN_EOF_REACHED",
	25219: "SW_WARN_FILE_DEACTIVATED",
	25220: "SW_WARN_FCI_BAD_FORMAT",
	25221: "SW_WARN_TERMINATION_STATE",
	25222: "SW_WARN_NO_INPUT_FROM_SENSOR",
	25344: "SW_WARN_NV_CHANGED_NO_INFO",
	25473: "SW_WARN_FILE_FILLED",
	25536: "SW_WARN_COUNTER_0",
	25600: "SW_ERR_EXEC_NO_INFO",
	25601: "SW_ERR_EXEC_IMMEDIATE_RESPONSE",
	25602: "SW_ERR_EXEC_TRIGGERING_BY_CARD",
	25856: "SW_ERR_NV_CHANGED_NO_INFO",
	25985: "SW_ERR_MEMORY_FAILURE",
	26112: "SW_ERR_SECURITY_ISSUE",
	26368: "SW_ERR_WRONG_LENGTH",
	26624: "SW_ERR_CHECKING_NO_INFO",
	26753: "SW_ERR_LOGICAL_CHANNEL_NOT_SUPP",
	26754: "SW_ERR_SECURE_MESSAGING_NOT_SUPP",
	26755: "SW_ERR_LAST_COMMAND_EXPECTED",
	26756: "SW_ERR_CHAINING_NOT_SUPP",
	26880: "SW_ERR_CMD_NOT_ALLOWED_NO_INFO",
	27009: "SW_ERR_CMD_INCOMPATIBLE_FILE",
	27010: "SW_ERR_SECURITY_STATUS_NOT_SAT",
	27011: "SW_ERR_AUTH_METHOD_BLOCKED",
	27012: "SW_ERR_REF_DATA_NOT_USABLE",
	27013: "SW_ERR_COND_OF_USE_NOT_SAT",
	27014: "SW_ERR_CMD_NOT_ALLOWED_NO_EF",
	27015: "SW_ERR_SM_OBJ_MISSING",
	27016: "SW_ERR_SM_OBJ_INCORRECT",
	27136: "SW_ERR_WRONG_PARAMS_NO_INFO",
	27264: "SW_ERR_INCORRECT_PARAMS_DATA",
	27265: "SW_ERR_FUNC_NOT_SUPPORTED",
	27266: "SW_ERR_FILE_NOT_FOUND",
	27267: "SW_ERR_RECORD_NOT_FOUND",
	27268: "SW_ERR_NOT_ENOUGH_MEMORY",
	27269: "SW_ERR_NC_INCONSISTENT_TLV",
	27270: "SW_ERR_INCORRECT_PARAMS_P1P2",
	27271: "SW_ERR_NC_INCONSISTENT_P1P2",
	27272: "SW_ERR_REF_DATA_NOT_FOUND",
	27273: "SW_ERR_FILE_ALREADY_EXISTS",
	27274: "SW_ERR_DF_NAME_ALREADY_EXISTS",
	27392: "SW_ERR_WRONG_P1P2",
	27904: "SW_ERR_INS_INVALID",
	28160: "SW_ERR_CLA_NOT_SUPPORTED",
	28416: "SW_ERR_UNKNOWN",
}

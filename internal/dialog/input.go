package dialog

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Command names, without the leading slash.
const (
	CmdStart  = "start"
	CmdHelp   = "help"
	CmdList   = "list"
	CmdGet    = "get"
	CmdAdd    = "add"
	CmdUpdate = "update"
	CmdDelete = "delete"
	CmdCancel = "cancel"
	CmdSkip   = "skip"
)

// Input is one inbound user event. Command is empty for free text.
type Input struct {
	UserID  int64
	Command string
	Args    []string
	Text    string
}

// ParseInput classifies raw chat text. "/cmd@bot a b" becomes command "cmd" with args [a b];
// anything else is free text kept verbatim.
func ParseInput(userID int64, text string) Input {
	in := Input{UserID: userID, Text: text}
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return in
	}
	fields := strings.Fields(trimmed)
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return in
	}
	in.Command = strings.ToLower(name)
	in.Args = fields[1:]
	return in
}

// CommandInput builds an input for a command triggered outside of text, e.g. an inline button.
func CommandInput(userID int64, command string) Input {
	return Input{UserID: userID, Command: command, Text: "/" + command}
}

var (
	errPriceFormat = errors.New("price is not a number")
	errMissingID   = errors.New("missing product id")
	errInvalidID   = errors.New("product id must be a positive integer")
)

// ParsePrice accepts plain decimals such as "9.99", "12,50" or "-3" with surrounding
// whitespace. Exponents, hex floats, digit separators and non-finite values are rejected.
func ParsePrice(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if !isPlainDecimal(s) {
		return 0, errPriceFormat
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errPriceFormat
	}
	return v, nil
}

// isPlainDecimal reports whether s is an optional sign, digits and at most one '.'.
func isPlainDecimal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errMissingID
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

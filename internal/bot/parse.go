package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTopicArg extracts the topic name from /topic arguments.
// The name may contain spaces; surrounding whitespace is dropped.
func ParseTopicArg(args string) (string, error) {
	name := strings.Join(strings.Fields(args), " ")
	if name == "" {
		return "", fmt.Errorf("topic name is required")
	}
	return name, nil
}

// ParseCallbackData splits inline button data of the form <action>:<id>.
func ParseCallbackData(data string) (string, int64, error) {
	action, idStr, ok := strings.Cut(data, ":")
	if !ok || action == "" {
		return "", 0, fmt.Errorf("malformed callback data %q", data)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid callback ID %q", idStr)
	}
	return action, id, nil
}

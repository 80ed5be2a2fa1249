package doctor

import (
	"path/filepath"
	"strings"
)

// MaskValue masks a potentially sensitive string value.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// RedactPath hides the user's identity in a path so doctor output can be
// pasted into a bug report: the home directory becomes "~" and the account
// name in a Windows "C:/Users/<name>" path is masked.
func RedactPath(path, home string) string {
	if path == "" {
		return path
	}
	slashed := filepath.ToSlash(path)
	if home != "" {
		h := strings.TrimSuffix(filepath.ToSlash(home), "/")
		if slashed == h {
			return "~"
		}
		if rest, ok := strings.CutPrefix(slashed, h+"/"); ok {
			return "~/" + rest
		}
	}

	lower := strings.ToLower(slashed)
	if i := strings.Index(lower, ":/users/"); i >= 0 {
		start := i + len(":/users/")
		end := strings.IndexByte(slashed[start:], '/')
		if end < 0 {
			end = len(slashed) - start
		}
		return slashed[:start] + MaskValue(slashed[start:start+end]) + slashed[start+end:]
	}
	return slashed
}

// Redact rewrites every path-like value in the report's details.
func (r *DoctorReport) Redact(home string) {
	for _, res := range r.Results {
		for k, v := range res.Details {
			if s, ok := v.(string); ok && strings.ContainsAny(s, `/\`) {
				res.Details[k] = RedactPath(s, home)
			}
		}
		res.Message = redactText(res.Message, home)
	}
}

func redactText(s, home string) string {
	if home == "" {
		return s
	}
	s = strings.ReplaceAll(s, home, "~")
	return strings.ReplaceAll(s, filepath.ToSlash(home), "~")
}

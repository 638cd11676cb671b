package services

import (
	"regexp"
	"strconv"
	"strings"
)

// SubjectAnalysis is the pure extraction result for one subject string,
// per spec.md §4.6.
type SubjectAnalysis struct {
	CollectionKey    string
	FileKey          string
	PartIndex        uint32
	PartTotal        uint32
	HasPart          bool
	InferredFilename string
}

var (
	partMarkerRe   = regexp.MustCompile(`[(\[](\d+)/(\d+)[)\]]`)
	quotedTokenRe  = regexp.MustCompile(`"([^"]+)"`)
	bareFilenameRe = regexp.MustCompile(`[A-Za-z0-9._-]+\.[A-Za-z0-9]{2,4}`)
	yEncTokenRe    = regexp.MustCompile(`(?i)\byEnc\b`)
	sizeAnnotRe    = regexp.MustCompile(`\(\d+\)`)
	fileOfRe       = regexp.MustCompile(`(?i)\bfile\s*\d+\s+of\s+\d+\b`)
	multiVolRe     = regexp.MustCompile(`(?i)\.(part\d+|r\d+|vol\d+\+\d+)\b`)
	extensionRe    = regexp.MustCompile(`(?i)\.[A-Za-z0-9]{2,4}$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// AnalyzeSubject extracts collection/file identity from a raw subject line.
// It is a pure function: the same input always yields the same output.
func AnalyzeSubject(subject string) SubjectAnalysis {
	result := SubjectAnalysis{}

	var rightmostMarkerSpan []int
	if locs := partMarkerRe.FindAllStringSubmatchIndex(subject, -1); len(locs) > 0 {
		rightmostMarkerSpan = locs[len(locs)-1]
		n, errN := strconv.ParseUint(subject[rightmostMarkerSpan[2]:rightmostMarkerSpan[3]], 10, 32)
		m, errM := strconv.ParseUint(subject[rightmostMarkerSpan[4]:rightmostMarkerSpan[5]], 10, 32)
		if errN == nil && errM == nil {
			result.PartIndex = uint32(n)
			result.PartTotal = uint32(m)
			result.HasPart = true
		}
	}

	result.InferredFilename = extractFilename(subject)
	result.CollectionKey = normalizeCollectionKey(subject)
	result.FileKey = deriveFileKey(subject, result.InferredFilename, rightmostMarkerSpan)

	return result
}

// extractFilename returns the longest quoted token, or the rightmost
// bare-filename-looking token when no quoted string is present.
func extractFilename(subject string) string {
	if matches := quotedTokenRe.FindAllStringSubmatch(subject, -1); len(matches) > 0 {
		longest := matches[0][1]
		for _, m := range matches[1:] {
			if len(m[1]) > len(longest) {
				longest = m[1]
			}
		}
		return longest
	}

	if matches := bareFilenameRe.FindAllString(subject, -1); len(matches) > 0 {
		return matches[len(matches)-1]
	}

	return ""
}

// deriveFileKey returns the inferred filename when available, otherwise the
// subject with only the part marker used for PartIndex/PartTotal removed.
// A second marker elsewhere in the subject (e.g. a collection-level
// "(1/10)" alongside a file-level "[2/5]") is left in place so two files
// that differ only in that other marker don't collapse into one file_key.
func deriveFileKey(subject, inferredFilename string, markerSpan []int) string {
	if inferredFilename != "" {
		return inferredFilename
	}
	stripped := subject
	if len(markerSpan) >= 2 {
		stripped = subject[:markerSpan[0]] + subject[markerSpan[1]:]
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(stripped, " "))
}

// normalizeCollectionKey implements spec.md §4.6 step 3. Empty results fall
// back to the verbatim subject.
func normalizeCollectionKey(subject string) string {
	s := subject
	s = yEncTokenRe.ReplaceAllString(s, "")
	s = sizeAnnotRe.ReplaceAllString(s, "")
	s = partMarkerRe.ReplaceAllString(s, "")
	s = fileOfRe.ReplaceAllString(s, "")
	s = multiVolRe.ReplaceAllString(s, "")
	s = extensionRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)

	if s == "" {
		return strings.ToLower(strings.TrimSpace(subject))
	}
	return s
}

// sanitizeFilename replaces characters outside [A-Za-z0-9._-] with "_" and
// truncates to 180 bytes, per spec.md §4.7's grouped-output filename rule.
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > 180 {
		out = out[:180]
	}
	return out
}

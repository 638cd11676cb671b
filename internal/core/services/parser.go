package services

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

// minOverviewFields is the minimum tab-separated field count per spec.md
// §4.4: article_num, subject, from, date, message_id, references, bytes, lines.
const minOverviewFields = 8

// ParseOverviewLine decodes one raw XOVER line into an OverviewRow.
// Returns (row, true) on success, or (zero, false) when the line must be
// dropped (too few fields, unparseable article number, or empty message id).
func ParseOverviewLine(groupName, line string) (domain.OverviewRow, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < minOverviewFields {
		return domain.OverviewRow{}, false
	}

	articleNum, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return domain.OverviewRow{}, false
	}

	messageID := normalizeMessageID(fields[4])
	if messageID == "" {
		return domain.OverviewRow{}, false
	}

	row := domain.OverviewRow{
		ArticleNum: articleNum,
		GroupName:  groupName,
		Subject:    fields[1],
		FromAddr:   fields[2],
		DateRaw:    fields[3],
		MessageID:  messageID,
	}

	if t, ok := parseOverviewDate(fields[3]); ok {
		unix := t.Unix()
		row.DateUnix = &unix
	}


	if bytesLen, err := strconv.ParseUint(strings.TrimSpace(fields[6]), 10, 64); err == nil {
		row.BytesLen = &bytesLen
	}

	if lineCount, err := strconv.ParseUint(strings.TrimSpace(fields[7]), 10, 32); err == nil {
		v := uint32(lineCount)
		row.LineCount = &v
	}

	for _, extra := range fields[8:] {
		if strings.HasPrefix(strings.ToLower(extra), "xref:") {
			row.Xref = strings.TrimSpace(extra[len("xref:"):])
			break
		}
	}

	return row, true
}

// normalizeMessageID wraps a bare id in angle brackets if missing, per
// spec.md §4.4. Returns "" for an empty id.
func normalizeMessageID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	if !strings.HasPrefix(id, "<") {
		id = "<" + id
	}
	if !strings.HasSuffix(id, ">") {
		id += ">"
	}
	return id
}

// parseOverviewDate accepts RFC 5322/2822 forms with timezone, as net/mail's
// ParseDate does.
func parseOverviewDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := mail.ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

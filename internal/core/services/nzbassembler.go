package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

// Ensure NZBAssembler implements the interface.
var _ driving.NZBAssembler = (*NZBAssembler)(nil)

const nzbDoctype = `<!DOCTYPE nzb PUBLIC "-//newzBin//DTD NZB 1.1//EN" "http://www.newzbin.com/DTD/nzb/nzb-1.1.dtd">`

// NZBAssembler groups indexed rows into files and collections, checks
// completeness, and emits canonical NZB XML per spec.md §4.7.
type NZBAssembler struct{}

// NewNZBAssembler creates an NZB assembler. It holds no state: the
// assembler is a pure function of its input rows and options.
func NewNZBAssembler() *NZBAssembler {
	return &NZBAssembler{}
}

// Assemble implements the Assembler contract from spec.md §4.7.
func (a *NZBAssembler) Assemble(_ context.Context, rows []domain.OverviewRow, opts domain.NZBConfig) ([]driving.NZBDocument, error) {
	files := bucketFiles(rows)
	collections := bucketCollections(files)

	if opts.RequireCompleteSets {
		collections = dropIncompleteSets(collections)
	}

	if !opts.GroupByCollection {
		var allFiles []domain.File
		for _, c := range collections {
			allFiles = append(allFiles, c.Files...)
		}
		xmlDoc, err := renderNZB(allFiles, groupNameOf(rows))
		if err != nil {
			return nil, err
		}
		return []driving.NZBDocument{{Filename: "output.nzb", XML: xmlDoc}}, nil
	}

	return renderGroupedNZBs(collections, groupNameOf(rows))
}

func groupNameOf(rows []domain.OverviewRow) string {
	if len(rows) == 0 {
		return ""
	}
	return rows[0].GroupName
}

// bucketFiles groups rows by (collection_key, file_key, part_total), per
// spec.md §4.7 step 1-2. Rows whose message id is empty are discarded.
func bucketFiles(rows []domain.OverviewRow) []domain.File {
	type fileKey struct {
		collectionKey string
		fileKey       string
		partTotal     uint32
	}
	index := make(map[fileKey]*domain.File)
	var order []fileKey

	for _, row := range rows {
		if row.MessageID == "" {
			continue
		}
		analysis := AnalyzeSubject(row.Subject)

		part := domain.FilePart{
			CollectionKey: analysis.CollectionKey,
			FileKey:       analysis.FileKey,
			PartIndex:     analysis.PartIndex,
			PartTotal:     analysis.PartTotal,
			ArticleNum:    row.ArticleNum,
			MessageID:     row.MessageID,
			FromAddr:      row.FromAddr,
			Subject:       row.Subject,
			BytesLen:      row.BytesLen,
			DateUnix:      row.DateUnix,
		}
		if !analysis.HasPart {
			part.PartIndex = 1
			part.PartTotal = 1
		}

		key := fileKey{collectionKey: analysis.CollectionKey, fileKey: analysis.FileKey, partTotal: part.PartTotal}
		f, ok := index[key]
		if !ok {
			f = &domain.File{
				CollectionKey: analysis.CollectionKey,
				FileKey:       analysis.FileKey,
				PartTotal:     part.PartTotal,
				Parts:         make(map[uint32]domain.FilePart),
			}
			index[key] = f
			order = append(order, key)
		}
		f.Parts[part.PartIndex] = part
	}

	files := make([]domain.File, 0, len(order))
	for _, k := range order {
		files = append(files, *index[k])
	}
	return files
}

// bucketCollections groups Files by (from_addr, collection_key), per
// spec.md §4.7 step 3.
func bucketCollections(files []domain.File) []domain.Collection {
	type collKey struct {
		fromAddr      string
		collectionKey string
	}
	index := make(map[collKey]*domain.Collection)
	var order []collKey

	for _, f := range files {
		from := f.EarliestPart().FromAddr
		key := collKey{fromAddr: from, collectionKey: f.CollectionKey}
		c, ok := index[key]
		if !ok {
			c = &domain.Collection{FromAddr: from, CollectionKey: f.CollectionKey}
			index[key] = c
			order = append(order, key)
		}
		c.Files = append(c.Files, f)
	}

	collections := make([]domain.Collection, 0, len(order))
	for _, k := range order {
		collections = append(collections, *index[k])
	}
	return collections
}

// dropIncompleteSets removes Files whose observed part set is not exactly
// {1..PartTotal}, and Collections left with no Files, per spec.md §4.7 step 4.
func dropIncompleteSets(collections []domain.Collection) []domain.Collection {
	var kept []domain.Collection
	for _, c := range collections {
		var completeFiles []domain.File
		for _, f := range c.Files {
			if f.Complete() {
				completeFiles = append(completeFiles, f)
			}
		}
		if len(completeFiles) > 0 {
			c.Files = completeFiles
			kept = append(kept, c)
		}
	}
	return kept
}

// renderNZB emits one NZB XML document for the given files, ordered by
// min(article_num) ascending per spec.md §4.7.
func renderNZB(files []domain.File, groupName string) ([]byte, error) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].MinArticleNum() < files[j].MinArticleNum()
	})

	root := nzbRoot{XMLName: xml.Name{Local: "nzb"}, Xmlns: "http://www.newzbin.com/DTD/2003/nzb"}
	for _, f := range files {
		root.Files = append(root.Files, buildNZBFile(f, groupName))
	}

	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal nzb: %w", err)
	}

	var out strings.Builder
	out.WriteString(xml.Header)
	out.WriteString(nzbDoctype)
	out.WriteString("\n")
	out.Write(body)
	out.WriteString("\n")
	return []byte(out.String()), nil
}

// renderGroupedNZBs emits one NZB document per (poster, collection),
// filenames sanitized and disambiguated per spec.md §4.7.
func renderGroupedNZBs(collections []domain.Collection, groupName string) ([]driving.NZBDocument, error) {
	var docs []driving.NZBDocument
	seen := make(map[string]int)

	for _, c := range collections {
		if len(c.Files) == 0 {
			continue
		}
		xmlDoc, err := renderNZB(c.Files, groupName)
		if err != nil {
			return nil, err
		}

		base := sanitizeFilename(c.FromAddr) + "__" + sanitizeFilename(c.CollectionKey)
		name := uniqueFilename(base, seen)
		docs = append(docs, driving.NZBDocument{Filename: name, XML: xmlDoc})
	}
	return docs, nil
}

func uniqueFilename(base string, seen map[string]int) string {
	seen[base]++
	n := seen[base]
	if n == 1 {
		return base + ".nzb"
	}
	return base + "-" + strconv.Itoa(n) + ".nzb"
}

func buildNZBFile(f domain.File, groupName string) nzbFile {
	earliest := f.EarliestPart()

	partIndices := make([]uint32, 0, len(f.Parts))
	for idx := range f.Parts {
		partIndices = append(partIndices, idx)
	}
	sort.Slice(partIndices, func(i, j int) bool { return partIndices[i] < partIndices[j] })

	var dateUnix int64
	if earliest.DateUnix != nil {
		dateUnix = *earliest.DateUnix
	}

	nf := nzbFile{
		Poster:  earliest.FromAddr,
		Date:    strconv.FormatInt(dateUnix, 10),
		Subject: earliest.Subject,
		Groups:  nzbGroups{Group: []string{groupName}},
	}
	for _, idx := range partIndices {
		p := f.Parts[idx]
		var bytesLen uint64
		if p.BytesLen != nil {
			bytesLen = *p.BytesLen
		}
		nf.Segments.Segment = append(nf.Segments.Segment, nzbSegment{
			Bytes:  bytesLen,
			Number: idx,
			Value:  strings.TrimSuffix(strings.TrimPrefix(p.MessageID, "<"), ">"),
		})
	}
	return nf
}

type nzbRoot struct {
	XMLName xml.Name  `xml:"nzb"`
	Xmlns   string    `xml:"xmlns,attr"`
	Files   []nzbFile `xml:"file"`
}

type nzbFile struct {
	Poster   string    `xml:"poster,attr"`
	Date     string    `xml:"date,attr"`
	Subject  string    `xml:"subject,attr"`
	Groups   nzbGroups `xml:"groups"`
	Segments nzbSegments `xml:"segments"`
}

type nzbGroups struct {
	Group []string `xml:"group"`
}

type nzbSegments struct {
	Segment []nzbSegment `xml:"segment"`
}

type nzbSegment struct {
	Bytes  uint64 `xml:"bytes,attr"`
	Number uint32 `xml:"number,attr"`
	Value  string `xml:",chardata"`
}

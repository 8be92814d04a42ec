package summarizer

import (
	"errors"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/tidwall/gjson"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var errInvalidJSON = errors.New("report input is not valid JSON")

type paragraphAdder interface {
	AddParagraph(text string) *docx.Paragraph
}

// WriteReport renders a JSON summary as a styled docx file.
// Object keys become bold headings, arrays become bullets.
func WriteReport(title string, data []byte, outputPath string) error {
	if !gjson.ValidBytes(data) {
		return errInvalidJSON
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)
	writeValue(doc, gjson.ParseBytes(data), 1)

	return doc.SaveTo(outputPath)
}

// WriteTranscriptDocx converts a plain-text transcript to a docx, one paragraph per line.
// Consecutive repeated lines are collapsed.
func WriteTranscriptDocx(title, transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	var prev string
	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == prev {
			continue
		}
		prev = trimmed
		p := doc.AddParagraph("")
		p.AddText(trimmed).Font(fontName).Size(fontSize).Color("000000")
	}

	return doc.SaveTo(outputPath)
}

func writeValue(doc paragraphAdder, v gjson.Result, depth int) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, val gjson.Result) bool {
			label := indent(depth) + humanizeKey(key.String())
			if val.IsObject() || val.IsArray() {
				addStyledRun(doc.AddParagraph(""), label, true, headingSize(depth))
				writeValue(doc, val, depth+1)
				return true
			}
			p := doc.AddParagraph("")
			p.AddText(label+": ").Font(fontName).Size(fontSize).Color("000000").Bold(true)
			p.AddText(val.String()).Font(fontName).Size(fontSize).Color("000000")
			return true
		})

	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() || item.IsArray() {
				writeValue(doc, item, depth+1)
				return true
			}
			p := doc.AddParagraph("")
			p.AddText(indent(depth) + "• " + item.String()).Font(fontName).Size(fontSize).Color("000000")
			return true
		})

	default:
		p := doc.AddParagraph("")
		p.AddText(v.String()).Font(fontName).Size(fontSize).Color("000000")
	}
}

func headingSize(depth int) uint64 {
	switch depth {
	case 1:
		return 15
	case 2:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func indent(depth int) string {
	if depth <= 1 {
		return ""
	}
	return strings.Repeat("    ", depth-1)
}

// humanizeKey turns "target_user" into "Target user"
func humanizeKey(key string) string {
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	key = strings.TrimSpace(key)
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

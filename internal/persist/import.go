package persist

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/richtext"
)

// kindAliases maps block type names used by other editors' exports onto
// native kinds.
var kindAliases = map[string]document.Kind{
	"text":               document.KindParagraph,
	"p":                  document.KindParagraph,
	"h1":                 document.KindHeading1,
	"h2":                 document.KindHeading2,
	"h3":                 document.KindHeading3,
	"heading1":           document.KindHeading1,
	"heading2":           document.KindHeading2,
	"heading3":           document.KindHeading3,
	"blockquote":         document.KindQuote,
	"bulleted_list_item": document.KindListItem,
	"numbered_list_item": document.KindListItem,
	"bullet_list":        document.KindBulletList,
	"ordered_list":       document.KindNumberedList,
	"hr":                 document.KindDivider,
	"img":                document.KindImage,
	"picture":            document.KindImage,
}

// annotationMarks maps annotation flag names to mark types.
var annotationMarks = map[string]richtext.MarkType{
	"bold":          richtext.MarkBold,
	"italic":        richtext.MarkItalic,
	"underline":     richtext.MarkUnderline,
	"strikethrough": richtext.MarkStrikethrough,
	"code":          richtext.MarkCode,
}

// Import recovers a document from JSON that need not be in native form. The
// native codec is tried first; anything else is walked best-effort: block
// arrays at the top level or under "blocks", "children" or "content", type
// names resolved through the alias table, text taken from "runs",
// "rich_text" or plain "text" fields. Items of unknown type keep their text
// as paragraphs or splice their children up a level; everything else is
// skipped. Imported blocks always receive fresh ids.
func Import(data []byte) (document.Document, error) {
	if d, err := Decode(data); err == nil {
		return d, nil
	}
	if !gjson.ValidBytes(data) {
		return document.Document{}, fmt.Errorf("import: invalid json: %w", ErrMalformed)
	}
	root := gjson.ParseBytes(data)

	var blocks []document.Block
	var roots []document.BlockID
	importItems(root).ForEach(func(_, item gjson.Result) bool {
		roots = append(roots, importBlock(item, &blocks)...)
		return true
	})
	if len(roots) == 0 && root.IsObject() {
		// A single object may itself be one block.
		roots = importBlock(root, &blocks)
	}
	if len(roots) == 0 {
		return document.Document{}, fmt.Errorf("import: %w", ErrEmptyImport)
	}
	d, err := document.Build(roots, blocks, 0)
	if err != nil {
		return document.Document{}, fmt.Errorf("import: %w", err)
	}
	return d, nil
}

// importItems locates the top-level block array.
func importItems(root gjson.Result) gjson.Result {
	if root.IsArray() {
		return root
	}
	for _, key := range []string{"blocks", "children", "content"} {
		if arr := root.Get(key); arr.IsArray() {
			return arr
		}
	}
	return gjson.Result{}
}

// importBlock recovers zero or more blocks from one foreign item, appending
// them to acc and returning the ids to splice into the parent's child list.
func importBlock(item gjson.Result, acc *[]document.Block) []document.BlockID {
	// Bare strings import as paragraphs.
	if item.Type == gjson.String {
		b := document.NewTextBlock(document.KindParagraph, item.String())
		*acc = append(*acc, b)
		return []document.BlockID{b.ID}
	}
	if !item.IsObject() {
		return nil
	}

	kind, known := importKind(item)
	runs := importRuns(item)
	kids := importChildren(item, acc)
	if !known {
		if len(runs) == 0 {
			// Unknown wrapper: keep whatever nested under it.
			return kids
		}
		kind = document.KindParagraph
	}

	b := document.NewBlock(kind)
	b.Children = kids
	if kind.TextBearing() {
		b.Runs = runs
	}
	switch kind {
	case document.KindToggle:
		b.Collapsed = item.Get("collapsed").Bool()
	case document.KindImage:
		b.Source = firstString(item, "source", "src", "url")
		b.Caption = runsFromValue(item.Get("caption"))
	case document.KindColumn:
		if w := item.Get("width"); w.Exists() {
			b.Width = w.Float()
		}
		if b.Width <= 0 || b.Width > 1 {
			b.Width = 1
		}
	}
	*acc = append(*acc, b)
	return []document.BlockID{b.ID}
}

func importKind(item gjson.Result) (document.Kind, bool) {
	for _, key := range []string{"kind", "type"} {
		name := item.Get(key)
		if name.Type != gjson.String {
			continue
		}
		if k, ok := document.ParseKind(name.String()); ok {
			return k, true
		}
		if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name.String()))]; ok {
			return k, true
		}
	}
	return 0, false
}

func importChildren(item gjson.Result, acc *[]document.Block) []document.BlockID {
	for _, key := range []string{"children", "blocks"} {
		arr := item.Get(key)
		if !arr.IsArray() {
			continue
		}
		var ids []document.BlockID
		arr.ForEach(func(_, kid gjson.Result) bool {
			ids = append(ids, importBlock(kid, acc)...)
			return true
		})
		return ids
	}
	return nil
}

func importRuns(item gjson.Result) richtext.Runs {
	if runs := item.Get("runs"); runs.IsArray() {
		return runsFromNative(runs)
	}
	if rich := item.Get("rich_text"); rich.IsArray() {
		return runsFromRichText(rich)
	}
	if text := item.Get("text"); text.Type == gjson.String {
		return richtext.Plain(text.String())
	}
	return nil
}

// runsFromNative reads the native run shape: {"text": ..., "marks": [...]}
// where each mark is a name string or a {"type", "href"} object.
func runsFromNative(arr gjson.Result) richtext.Runs {
	var runs richtext.Runs
	arr.ForEach(func(_, rv gjson.Result) bool {
		text := rv.Get("text")
		if text.Type != gjson.String {
			return true
		}
		run := richtext.Run{Text: text.String()}
		rv.Get("marks").ForEach(func(_, mv gjson.Result) bool {
			name, href := mv.String(), ""
			if mv.IsObject() {
				name = mv.Get("type").String()
				href = mv.Get("href").String()
			}
			if t, ok := richtext.ParseMarkType(name); ok {
				run.Marks = run.Marks.With(richtext.Mark{Type: t, Href: href})
			}
			return true
		})
		runs = append(runs, run)
		return true
	})
	return richtext.Normalize(runs)
}

// runsFromRichText reads annotation-style rich text: text under
// "plain_text" or "text.content", flags under "annotations", links under
// "href".
func runsFromRichText(arr gjson.Result) richtext.Runs {
	var runs richtext.Runs
	arr.ForEach(func(_, rv gjson.Result) bool {
		text := rv.Get("plain_text")
		if text.Type != gjson.String {
			text = rv.Get("text.content")
		}
		if text.Type != gjson.String {
			return true
		}
		run := richtext.Run{Text: text.String()}
		for name, t := range annotationMarks {
			if rv.Get("annotations." + name).Bool() {
				run.Marks = run.Marks.With(richtext.Mark{Type: t})
			}
		}
		if href := rv.Get("href"); href.Type == gjson.String && href.String() != "" {
			run.Marks = run.Marks.With(richtext.Link(href.String()))
		}
		runs = append(runs, run)
		return true
	})
	return richtext.Normalize(runs)
}

// runsFromValue reads a value that should itself be text: a string or a run
// array in either supported shape.
func runsFromValue(v gjson.Result) richtext.Runs {
	switch {
	case v.Type == gjson.String:
		return richtext.Plain(v.String())
	case v.IsArray():
		if runs := runsFromNative(v); len(runs) > 0 {
			return runs
		}
		return runsFromRichText(v)
	default:
		return nil
	}
}

func firstString(item gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := item.Get(key); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// Open reads a PPTX file from disk.
func Open(path string) (*Presentation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return ReadFrom(f, info.Size())
}

// ReadFrom reads a PPTX package from an io.ReaderAt. Only the shape kinds
// this package writes are recognized; anything else on a slide is skipped.
func ReadFrom(reader io.ReaderAt, size int64) (*Presentation, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid reader size: %d", size)
	}
	if size > maxZipTotalSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, maxZipTotalSize)
	}
	zr, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)
	}

	r := &pptxReader{files: zipIndex(zr)}
	pres := New()

	// missing core properties are acceptable
	_ = r.readCoreProperties(pres)

	slideRels, err := r.readPresentation(pres)
	if err != nil {
		return nil, err
	}
	presRels, err := r.readRelationships("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil, err
	}

	for _, relID := range slideRels {
		target := presRels[relID].Target
		if target == "" {
			continue
		}
		target = resolveTarget("ppt", target)
		slide, err := r.readSlide(target)
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %s: %w", target, err)
		}
		pres.slides = append(pres.slides, slide)
	}
	return pres, nil
}

const (
	// maxZipEntrySize bounds a single extracted part.
	maxZipEntrySize = 50 << 20
	maxZipTotalSize = 200 << 20
	maxZipEntries   = 10000
)

type pptxReader struct {
	files map[string]*zip.File
}

func zipIndex(zr *zip.Reader) map[string]*zip.File {
	m := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		m[f.Name] = f
	}
	return m
}

func (r *pptxReader) readFile(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("file not found in zip: %s", name)
	}
	if f.UncompressedSize64 > maxZipEntrySize {
		return nil, fmt.Errorf("file %s exceeds maximum allowed size (%d bytes)", name, maxZipEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxZipEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from zip: %w", name, err)
	}
	if len(data) > maxZipEntrySize {
		return nil, fmt.Errorf("file %s actual size exceeds maximum allowed size", name)
	}
	return data, nil
}

// resolveTarget joins a relationship target onto the directory of its source part.
func resolveTarget(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(dir, target))
}

// --- Relationships ---

type xmlRelForRead struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type xmlRelsForRead struct {
	Relationships []xmlRelForRead `xml:"Relationship"`
}

// readRelationships returns the relationships of a part keyed by ID. A
// missing rels part yields an empty map.
func (r *pptxReader) readRelationships(name string) (map[string]xmlRelForRead, error) {
	out := make(map[string]xmlRelForRead)
	data, err := r.readFile(name)
	if err != nil {
		return out, nil
	}
	var rels xmlRelsForRead
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships %s: %w", name, err)
	}
	for _, rel := range rels.Relationships {
		out[rel.ID] = rel
	}
	return out, nil
}

// --- Package parts ---

type xmlCoreForRead struct {
	Title       string `xml:"title"`
	Subject     string `xml:"subject"`
	Creator     string `xml:"creator"`
	Keywords    string `xml:"keywords"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	Revision    string `xml:"revision"`
}

func (r *pptxReader) readCoreProperties(pres *Presentation) error {
	data, err := r.readFile("docProps/core.xml")
	if err != nil {
		return err
	}
	var core xmlCoreForRead
	if err := xml.Unmarshal(data, &core); err != nil {
		return err
	}
	props := pres.properties
	props.Title = core.Title
	props.Subject = core.Subject
	props.Creator = core.Creator
	props.Keywords = core.Keywords
	props.Description = core.Description
	props.Category = core.Category
	props.Revision = core.Revision
	return nil
}

type xmlPresentationForRead struct {
	SldIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
	SldSz struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

func (r *pptxReader) readPresentation(pres *Presentation) ([]string, error) {
	data, err := r.readFile("ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	var p xmlPresentationForRead
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse presentation.xml: %w", err)
	}
	if p.SldSz.CX > 0 && p.SldSz.CY > 0 {
		pres.layout.SetCustomLayout(p.SldSz.CX, p.SldSz.CY)
		for _, name := range LayoutNames() {
			if _, cx, cy, _ := LookupLayout(name); cx == p.SldSz.CX && cy == p.SldSz.CY {
				pres.layout.Name = name
				break
			}
		}
	}
	ids := make([]string, 0, len(p.SldIDs))
	for _, s := range p.SldIDs {
		ids = append(ids, s.RID)
	}
	return ids, nil
}

// --- Slide shapes ---

type xmlCNvPr struct {
	ID    int    `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

type xmlColorForRead struct {
	SrgbClr *struct {
		Val   string `xml:"val,attr"`
		Alpha *struct {
			Val int `xml:"val,attr"`
		} `xml:"alpha"`
	} `xml:"srgbClr"`
}

func (c *xmlColorForRead) color() Color {
	if c == nil || c.SrgbClr == nil {
		return ColorBlack
	}
	col := NewColor(c.SrgbClr.Val)
	if c.SrgbClr.Alpha != nil {
		col.Alpha = c.SrgbClr.Alpha.Val
	}
	return col
}

type xmlLineEndForRead struct {
	Type string `xml:"type,attr"`
	W    string `xml:"w,attr"`
	Len  string `xml:"len,attr"`
}

func (e *xmlLineEndForRead) lineEnd() *LineEnd {
	if e == nil || e.Type == "" || e.Type == string(ArrowNone) {
		return nil
	}
	return &LineEnd{Type: ArrowType(e.Type), Width: ArrowSize(e.W), Length: ArrowSize(e.Len)}
}

type xmlLnForRead struct {
	W         int64              `xml:"w,attr"`
	NoFill    *struct{}          `xml:"noFill"`
	SolidFill *xmlColorForRead   `xml:"solidFill"`
	HeadEnd   *xmlLineEndForRead `xml:"headEnd"`
	TailEnd   *xmlLineEndForRead `xml:"tailEnd"`
}

type xmlPathCmdForRead struct {
	XMLName xml.Name
	Pts     []struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"pt"`
}

type xmlSpPrForRead struct {
	Xfrm struct {
		FlipH bool `xml:"flipH,attr"`
		FlipV bool `xml:"flipV,attr"`
		Off   struct {
			X int64 `xml:"x,attr"`
			Y int64 `xml:"y,attr"`
		} `xml:"off"`
		Ext struct {
			CX int64 `xml:"cx,attr"`
			CY int64 `xml:"cy,attr"`
		} `xml:"ext"`
	} `xml:"xfrm"`
	PrstGeom *struct {
		Prst string `xml:"prst,attr"`
	} `xml:"prstGeom"`
	CustGeom *struct {
		Paths []struct {
			W    int64               `xml:"w,attr"`
			H    int64               `xml:"h,attr"`
			Cmds []xmlPathCmdForRead `xml:",any"`
		} `xml:"pathLst>path"`
	} `xml:"custGeom"`
	NoFill    *struct{}        `xml:"noFill"`
	SolidFill *xmlColorForRead `xml:"solidFill"`
	Ln        *xmlLnForRead    `xml:"ln"`
}

func (sp *xmlSpPrForRead) applyTo(b *BaseShape) {
	b.offsetX, b.offsetY = sp.Xfrm.Off.X, sp.Xfrm.Off.Y
	b.width, b.height = sp.Xfrm.Ext.CX, sp.Xfrm.Ext.CY
	b.flipHorizontal, b.flipVertical = sp.Xfrm.FlipH, sp.Xfrm.FlipV
	switch {
	case sp.SolidFill != nil:
		b.fill = NewFill().SetSolid(sp.SolidFill.color())
	case sp.NoFill != nil:
		b.fill = NewFill()
	}
	if sp.Ln != nil {
		if sp.Ln.SolidFill != nil {
			b.border = NewBorder().SetSolid(sp.Ln.SolidFill.color(), sp.Ln.W)
		} else {
			b.border = NewBorder()
		}
	}
}

type xmlTxBodyForRead struct {
	BodyPr struct {
		Wrap string `xml:"wrap,attr"`
	} `xml:"bodyPr"`
	Paragraphs []struct {
		PPr *struct {
			Algn string `xml:"algn,attr"`
		} `xml:"pPr"`
		Runs []struct {
			RPr *struct {
				Sz        string           `xml:"sz,attr"`
				B         string           `xml:"b,attr"`
				I         string           `xml:"i,attr"`
				SolidFill *xmlColorForRead `xml:"solidFill"`
				Latin     *struct {
					Typeface string `xml:"typeface,attr"`
				} `xml:"latin"`
			} `xml:"rPr"`
			T string `xml:"t"`
		} `xml:"r"`
	} `xml:"p"`
}

type xmlSpForRead struct {
	CNvPr   xmlCNvPr `xml:"nvSpPr>cNvPr"`
	CNvSpPr struct {
		TxBox string `xml:"txBox,attr"`
	} `xml:"nvSpPr>cNvSpPr"`
	SpPr   xmlSpPrForRead    `xml:"spPr"`
	TxBody *xmlTxBodyForRead `xml:"txBody"`
}

type xmlCxnSpForRead struct {
	CNvPr xmlCNvPr       `xml:"nvCxnSpPr>cNvPr"`
	SpPr  xmlSpPrForRead `xml:"spPr"`
}

type xmlPicForRead struct {
	CNvPr xmlCNvPr `xml:"nvPicPr>cNvPr"`
	Blip  struct {
		Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
	} `xml:"blipFill>blip"`
	SpPr xmlSpPrForRead `xml:"spPr"`
}

type xmlBgForRead struct {
	SolidFill *xmlColorForRead `xml:"bgPr>solidFill"`
}

func (r *pptxReader) readSlide(name string) (*Slide, error) {
	data, err := r.readFile(name)
	if err != nil {
		return nil, err
	}
	dir := path.Dir(name)
	rels, err := r.readRelationships(path.Join(dir, "_rels", path.Base(name)+".rels"))
	if err != nil {
		return nil, err
	}

	slide := newSlide()
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			var shape Shape
			switch t.Name.Local {
			case "cSld":
				for _, a := range t.Attr {
					if a.Name.Local == "name" {
						slide.name = a.Value
					}
				}
				continue
			case "bg":
				var bg xmlBgForRead
				err = decoder.DecodeElement(&bg, &t)
				if err == nil && bg.SolidFill != nil {
					slide.background = NewFill().SetSolid(bg.SolidFill.color())
				}
			case "sp":
				var sp xmlSpForRead
				if err = decoder.DecodeElement(&sp, &t); err == nil {
					shape = readSp(&sp)
				}
			case "cxnSp":
				var cxn xmlCxnSpForRead
				if err = decoder.DecodeElement(&cxn, &t); err == nil {
					shape = readCxnSp(&cxn)
				}
			case "pic":
				var pic xmlPicForRead
				if err = decoder.DecodeElement(&pic, &t); err == nil {
					shape, err = r.readPic(&pic, dir, rels)
				}
			default:
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", name, err)
			}
			if shape != nil {
				slide.shapes = append(slide.shapes, shape)
			}
		}
	}
	return slide, nil
}

func readSp(sp *xmlSpForRead) Shape {
	var shape Shape
	var b *BaseShape
	switch {
	case sp.TxBody != nil || sp.CNvSpPr.TxBox == "1":
		rt := readTxBody(sp.TxBody)
		shape, b = rt, &rt.BaseShape
	case sp.SpPr.CustGeom != nil:
		ff := &FreeformShape{path: &CustomGeomPath{}}
		for _, p := range sp.SpPr.CustGeom.Paths {
			ff.path.Width, ff.path.Height = p.W, p.H
			for _, c := range p.Cmds {
				cmd := PathCommand{Type: c.XMLName.Local}
				for _, pt := range c.Pts {
					cmd.Pts = append(cmd.Pts, PathPoint{X: pt.X, Y: pt.Y})
				}
				ff.path.Commands = append(ff.path.Commands, cmd)
			}
		}
		shape, b = ff, &ff.BaseShape
	default:
		a := NewAutoShape()
		if sp.SpPr.PrstGeom != nil && sp.SpPr.PrstGeom.Prst != "" {
			a.SetAutoShapeType(AutoShapeType(sp.SpPr.PrstGeom.Prst))
		}
		shape, b = a, &a.BaseShape
	}
	b.name, b.description = sp.CNvPr.Name, sp.CNvPr.Descr
	sp.SpPr.applyTo(b)
	return shape
}

func readTxBody(body *xmlTxBodyForRead) *RichTextShape {
	rt := NewRichTextShape()
	rt.Clear()
	if body == nil {
		return rt
	}
	rt.wordWrap = body.BodyPr.Wrap != "none"
	for _, p := range body.Paragraphs {
		para := rt.CreateParagraph()
		if p.PPr != nil {
			para.alignment = HorizontalAlignment(p.PPr.Algn)
		}
		for _, run := range p.Runs {
			if run.RPr == nil || run.RPr.Sz == "" {
				para.CreatePlainRun(run.T)
				continue
			}
			tr := para.CreateTextRun(run.T)
			if sz, err := strconv.Atoi(run.RPr.Sz); err == nil {
				tr.font.Size = float64(sz) / 100
			}
			tr.font.Bold = run.RPr.B == "1"
			tr.font.Italic = run.RPr.I == "1"
			if run.RPr.SolidFill != nil {
				tr.font.SetColor(run.RPr.SolidFill.color())
			}
			if run.RPr.Latin != nil {
				tr.font.Name = run.RPr.Latin.Typeface
			}
		}
	}
	return rt
}

func readCxnSp(cxn *xmlCxnSpForRead) Shape {
	l := NewLineShape()
	l.name = cxn.CNvPr.Name
	x := cxn.SpPr.Xfrm
	x1, x2 := x.Off.X, x.Off.X+x.Ext.CX
	y1, y2 := x.Off.Y, x.Off.Y+x.Ext.CY
	if x.FlipH {
		x1, x2 = x2, x1
	}
	if x.FlipV {
		y1, y2 = y2, y1
	}
	l.SetEndpoints(x1, y1, x2, y2)
	if ln := cxn.SpPr.Ln; ln != nil {
		l.lineWidthEMU = ln.W
		if ln.SolidFill != nil {
			l.lineStyle = BorderSolid
			l.lineColor = ln.SolidFill.color()
		} else if ln.NoFill != nil {
			l.lineStyle = BorderNone
		}
		l.headEnd = ln.HeadEnd.lineEnd()
		l.tailEnd = ln.TailEnd.lineEnd()
	}
	return l
}

func (r *pptxReader) readPic(pic *xmlPicForRead, dir string, rels map[string]xmlRelForRead) (Shape, error) {
	rel, ok := rels[pic.Blip.Embed]
	if !ok {
		return nil, fmt.Errorf("picture %q references unknown relationship %q", pic.CNvPr.Name, pic.Blip.Embed)
	}
	target := resolveTarget(dir, rel.Target)
	data, err := r.readFile(target)
	if err != nil {
		return nil, err
	}
	ds := NewDrawingShape()
	ds.SetImageData(data, imageContentType(strings.TrimPrefix(path.Ext(target), ".")))
	ds.name, ds.description = pic.CNvPr.Name, pic.CNvPr.Descr
	pic.SpPr.applyTo(&ds.BaseShape)
	return ds, nil
}

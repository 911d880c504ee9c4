package pptx

import (
	"archive/zip"
	"fmt"
	"strings"
)

// slidePictures returns the pictures of a slide in relationship order.
// Slide relationship rId1 is the layout; pictures follow from rId2.
func slidePictures(slide *Slide) []*DrawingShape {
	return collectDrawingShapes(slide.shapes)
}

// collectDrawingShapes returns the DrawingShapes that carry image data.
func collectDrawingShapes(shapes []Shape) []*DrawingShape {
	var result []*DrawingShape
	for _, shape := range shapes {
		if ds, ok := shape.(*DrawingShape); ok && len(ds.data) > 0 {
			result = append(result, ds)
		}
	}
	return result
}

func (w *PPTXWriter) writeSlide(zw *zip.Writer, slide *Slide, slideNum int) error {
	relIDs := make(map[*DrawingShape]int)
	for i, ds := range slidePictures(slide) {
		relIDs[ds] = i + 2
	}

	var shapesXML strings.Builder
	shapeID := 2 // 1 is reserved for the group shape

	for _, shape := range slide.shapes {
		switch s := shape.(type) {
		case *RichTextShape:
			shapesXML.WriteString(w.writeRichTextShapeXML(s, &shapeID))
		case *DrawingShape:
			if rid, ok := relIDs[s]; ok {
				shapesXML.WriteString(w.writeDrawingShapeXML(s, &shapeID, rid))
			}
		case *AutoShape:
			shapesXML.WriteString(w.writeAutoShapeXML(s, &shapeID))
		case *LineShape:
			shapesXML.WriteString(w.writeLineShapeXML(s, &shapeID))
		case *FreeformShape:
			shapesXML.WriteString(w.writeFreeformShapeXML(s, &shapeID))
		}
	}

	bgXML := ""
	if slide.background != nil && slide.background.Type != FillNone {
		bgXML = "    <p:bg>\n      <p:bgPr>\n"
		bgXML += w.writeFillXML(slide.background)
		bgXML += "        <a:effectLst/>\n      </p:bgPr>\n    </p:bg>\n"
	}

	nameAttr := ""
	if slide.name != "" {
		nameAttr = fmt.Sprintf(` name="%s"`, xmlEscape(slide.name))
	}

	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld%s>
%s    <p:spTree>
%s%s    </p:spTree>
  </p:cSld>
  <p:clrMapOvr>
    <a:masterClrMapping/>
  </p:clrMapOvr>
</p:sld>`, nsDrawingML, nsOfficeDocRels, nsPresentationML, nameAttr, bgXML, groupShapeProps, shapesXML.String())

	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/slides/slide%d.xml", slideNum), content)
}

func (w *PPTXWriter) writeSlideRels(zw *zip.Writer, slide *Slide, slideNum int) error {
	var rels strings.Builder
	fmt.Fprintf(&rels, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="../slideLayouts/slideLayout1.xml"/>`, nsRelationships, relTypeSlideLayout)

	for i, ds := range slidePictures(slide) {
		fmt.Fprintf(&rels, `
  <Relationship Id="rId%d" Type="%s" Target="../media/image%d.%s"/>`,
			i+2, relTypeImage, w.media[ds], imageExtension(ds.mimeType))
	}

	rels.WriteString(`
</Relationships>`)
	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slideNum), rels.String())
}

// xfrmAttrs builds the attribute string for <a:xfrm>.
func xfrmAttrs(b *BaseShape) string {
	var sb strings.Builder
	if b.flipHorizontal {
		sb.WriteString(` flipH="1"`)
	}
	if b.flipVertical {
		sb.WriteString(` flipV="1"`)
	}
	return sb.String()
}

func shapeName(b *BaseShape, kind string, id int) string {
	if b.name != "" {
		return b.name
	}
	return fmt.Sprintf("%s %d", kind, id)
}

func descrAttr(b *BaseShape) string {
	if b.description == "" {
		return ""
	}
	return fmt.Sprintf(` descr="%s"`, xmlEscape(b.description))
}

// --- Rich Text Shape XML ---

func (w *PPTXWriter) writeRichTextShapeXML(s *RichTextShape, shapeID *int) string {
	id := *shapeID
	*shapeID++

	var paragraphsXML strings.Builder
	for _, para := range s.paragraphs {
		paragraphsXML.WriteString(w.writeParagraphXML(para))
	}
	if len(s.paragraphs) == 0 {
		paragraphsXML.WriteString("          <a:p/>\n")
	}

	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"%s/>
          <p:cNvSpPr txBox="1"/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
          <a:xfrm%s>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:prstGeom prst="rect">
            <a:avLst/>
          </a:prstGeom>
%s%s        </p:spPr>
        <p:txBody>
          <a:bodyPr wrap="%s" lIns="0" tIns="0" rIns="0" bIns="0" rtlCol="0"/>
          <a:lstStyle/>
%s        </p:txBody>
      </p:sp>
`, id, xmlEscape(shapeName(&s.BaseShape, "TextBox", id)), descrAttr(&s.BaseShape), xfrmAttrs(&s.BaseShape),
		s.offsetX, s.offsetY, s.width, s.height,
		w.writeFillXML(s.fill), w.writeBorderXML(s.border),
		boolToWrap(s.wordWrap),
		paragraphsXML.String())
}

func boolToWrap(wrap bool) string {
	if wrap {
		return "square"
	}
	return "none"
}

func (w *PPTXWriter) writeParagraphXML(para *Paragraph) string {
	algn := ""
	if para.alignment != "" {
		algn = fmt.Sprintf(` algn="%s"`, para.alignment)
	}

	var runsXML strings.Builder
	for _, tr := range para.runs {
		runsXML.WriteString(w.writeTextRunXML(tr))
	}

	return fmt.Sprintf(`          <a:p>
            <a:pPr%s/>
%s          </a:p>
`, algn, runsXML.String())
}

func (w *PPTXWriter) writeTextRunXML(tr *TextRun) string {
	font := tr.font
	if font == nil {
		return fmt.Sprintf(`            <a:r>
              <a:rPr lang="en-US" dirty="0"/>
              <a:t>%s</a:t>
            </a:r>
`, xmlEscape(tr.text))
	}

	sz := font.sizeHundredths()
	sz = max(minFontSize*100, min(sz, maxFontSize*100))
	attrs := fmt.Sprintf(` lang="en-US" sz="%d" dirty="0"`, sz)
	if font.Bold {
		attrs += ` b="1"`
	}
	if font.Italic {
		attrs += ` i="1"`
	}

	solidFill := ""
	if font.Color != nil {
		solidFill = fmt.Sprintf(`
                <a:solidFill>%s</a:solidFill>`, srgbClrXML(*font.Color))
	}

	latin := ""
	if font.Name != "" {
		latin = fmt.Sprintf(`
                <a:latin typeface="%s"/>`, xmlEscape(font.Name))
	}

	return fmt.Sprintf(`            <a:r>
              <a:rPr%s>%s%s
              </a:rPr>
              <a:t>%s</a:t>
            </a:r>
`, attrs, solidFill, latin, xmlEscape(tr.text))
}

// --- Drawing Shape XML ---

func (w *PPTXWriter) writeDrawingShapeXML(s *DrawingShape, shapeID *int, relID int) string {
	id := *shapeID
	*shapeID++

	return fmt.Sprintf(`      <p:pic>
        <p:nvPicPr>
          <p:cNvPr id="%d" name="%s" descr="%s"/>
          <p:cNvPicPr>
            <a:picLocks noChangeAspect="1"/>
          </p:cNvPicPr>
          <p:nvPr/>
        </p:nvPicPr>
        <p:blipFill>
          <a:blip r:embed="rId%d"/>
          <a:stretch>
            <a:fillRect/>
          </a:stretch>
        </p:blipFill>
        <p:spPr>
          <a:xfrm%s>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:prstGeom prst="rect">
            <a:avLst/>
          </a:prstGeom>
        </p:spPr>
      </p:pic>
`, id, xmlEscape(shapeName(&s.BaseShape, "Picture", id)), xmlEscape(s.description),
		relID,
		xfrmAttrs(&s.BaseShape),
		s.offsetX, s.offsetY, s.width, s.height)
}

// --- Auto Shape XML ---

func (w *PPTXWriter) writeAutoShapeXML(s *AutoShape, shapeID *int) string {
	id := *shapeID
	*shapeID++

	kind := "Rectangle"
	if s.shapeType == AutoShapeEllipse {
		kind = "Oval"
	}

	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"%s/>
          <p:cNvSpPr/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
          <a:xfrm%s>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:prstGeom prst="%s">
            <a:avLst/>
          </a:prstGeom>
%s%s        </p:spPr>
      </p:sp>
`, id, xmlEscape(shapeName(&s.BaseShape, kind, id)), descrAttr(&s.BaseShape),
		xfrmAttrs(&s.BaseShape),
		s.offsetX, s.offsetY, s.width, s.height,
		s.shapeType,
		w.writeFillXML(s.fill), w.writeBorderXML(s.border))
}

// --- Line Shape XML ---

func lineEndXML(tag string, e *LineEnd) string {
	if e == nil || e.Type == ArrowNone || e.Type == "" {
		return ""
	}
	width, length := e.Width, e.Length
	if width == "" {
		width = ArrowSizeMedium
	}
	if length == "" {
		length = ArrowSizeMedium
	}
	return fmt.Sprintf(`
            <a:%s type="%s" w="%s" len="%s"/>`, tag, e.Type, width, length)
}

func (w *PPTXWriter) writeLineShapeXML(s *LineShape, shapeID *int) string {
	id := *shapeID
	*shapeID++

	var lnXML string
	if s.lineStyle == BorderNone {
		lnXML = fmt.Sprintf(`          <a:ln w="%d">
            <a:noFill/>%s%s
          </a:ln>`, s.lineWidthEMU, lineEndXML("headEnd", s.headEnd), lineEndXML("tailEnd", s.tailEnd))
	} else {
		lnXML = fmt.Sprintf(`          <a:ln w="%d">
            <a:solidFill>
              %s
            </a:solidFill>%s%s
          </a:ln>`, s.lineWidthEMU, srgbClrXML(s.lineColor),
			lineEndXML("headEnd", s.headEnd), lineEndXML("tailEnd", s.tailEnd))
	}

	return fmt.Sprintf(`      <p:cxnSp>
        <p:nvCxnSpPr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvCxnSpPr/>
          <p:nvPr/>
        </p:nvCxnSpPr>
        <p:spPr>
          <a:xfrm%s>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:prstGeom prst="line">
            <a:avLst/>
          </a:prstGeom>
%s
        </p:spPr>
      </p:cxnSp>
`, id, xmlEscape(shapeName(&s.BaseShape, "Connector", id)),
		xfrmAttrs(&s.BaseShape),
		s.offsetX, s.offsetY, s.width, s.height,
		lnXML)
}

// --- Freeform Shape XML ---

func (w *PPTXWriter) writeFreeformShapeXML(s *FreeformShape, shapeID *int) string {
	id := *shapeID
	*shapeID++

	var pathXML strings.Builder
	for _, cmd := range s.path.Commands {
		switch cmd.Type {
		case "close":
			pathXML.WriteString("\n                <a:close/>")
		case "moveTo", "lnTo":
			for _, pt := range cmd.Pts {
				fmt.Fprintf(&pathXML, "\n                <a:%s><a:pt x=\"%d\" y=\"%d\"/></a:%s>", cmd.Type, pt.X, pt.Y, cmd.Type)
			}
		}
	}

	// a zero-extent path space is rejected by PowerPoint
	pw, ph := max(s.path.Width, 1), max(s.path.Height, 1)

	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"%s/>
          <p:cNvSpPr/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
          <a:xfrm%s>
            <a:off x="%d" y="%d"/>
            <a:ext cx="%d" cy="%d"/>
          </a:xfrm>
          <a:custGeom>
            <a:avLst/>
            <a:gdLst/>
            <a:ahLst/>
            <a:cxnLst/>
            <a:rect l="l" t="t" r="r" b="b"/>
            <a:pathLst>
              <a:path w="%d" h="%d">%s
              </a:path>
            </a:pathLst>
          </a:custGeom>
%s%s        </p:spPr>
      </p:sp>
`, id, xmlEscape(shapeName(&s.BaseShape, "Freeform", id)), descrAttr(&s.BaseShape),
		xfrmAttrs(&s.BaseShape),
		s.offsetX, s.offsetY, s.width, s.height,
		pw, ph, pathXML.String(),
		w.writeFillXML(s.fill), w.writeBorderXML(s.border))
}

// --- Fill and Border helpers ---

func (w *PPTXWriter) writeFillXML(f *Fill) string {
	if f == nil {
		return ""
	}
	switch f.Type {
	case FillSolid:
		return fmt.Sprintf("          <a:solidFill>%s</a:solidFill>\n", srgbClrXML(f.Color))
	default:
		return "          <a:noFill/>\n"
	}
}

func (w *PPTXWriter) writeBorderXML(b *Border) string {
	if b == nil {
		return ""
	}
	if b.Style == BorderNone {
		return "          <a:ln><a:noFill/></a:ln>\n"
	}
	return fmt.Sprintf("          <a:ln w=\"%d\"><a:solidFill>%s</a:solidFill></a:ln>\n",
		b.Width, srgbClrXML(b.Color))
}

// --- Media ---

func (w *PPTXWriter) writeMedia(zw *zip.Writer) error {
	for _, slide := range w.presentation.slides {
		for _, ds := range collectDrawingShapes(slide.shapes) {
			name := fmt.Sprintf("ppt/media/image%d.%s", w.media[ds], imageExtension(ds.mimeType))
			fw, err := zw.Create(name)
			if err != nil {
				return fmt.Errorf("failed to create %s in zip: %w", name, err)
			}
			if _, err := fw.Write(ds.data); err != nil {
				return err
			}
		}
	}
	return nil
}

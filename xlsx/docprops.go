package xlsx

import (
	"archive/zip"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"xlc/document"
)

const (
	nsCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC            = "http://purl.org/dc/elements/1.1/"
	nsDCTerms       = "http://purl.org/dc/terms/"
	nsDCMIType      = "http://purl.org/dc/dcmitype/"
	nsXSI           = "http://www.w3.org/2001/XMLSchema-instance"
	nsExtendedProps = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	nsVTypes        = "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"
)

const w3cdtf = "2006-01-02T15:04:05Z"

func (s *saver) writeCoreProps(zw *zip.Writer) error {
	p := &s.wb.DocProps

	doc := newPartDoc()
	root := doc.CreateElement("cp:coreProperties")
	root.CreateAttr("xmlns:cp", nsCoreProps)
	root.CreateAttr("xmlns:dc", nsDC)
	root.CreateAttr("xmlns:dcterms", nsDCTerms)
	root.CreateAttr("xmlns:dcmitype", nsDCMIType)
	root.CreateAttr("xmlns:xsi", nsXSI)

	setIf := func(tag, val string) {
		if val != "" {
			root.CreateElement(tag).SetText(val)
		}
	}
	setIf("dc:title", p.Title)
	setIf("dc:subject", p.Subject)
	setIf("dc:creator", p.Creator)
	setIf("cp:keywords", p.Keywords)
	setIf("dc:description", p.Description)
	setIf("cp:lastModifiedBy", p.LastModifiedBy)
	setIf("cp:revision", p.Revision)
	setIf("cp:category", p.Category)
	setIf("cp:contentStatus", p.ContentStatus)
	setIf("dc:language", p.Language)
	setIf("cp:version", p.Version)

	created, modified := p.Created, p.Modified
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if modified.IsZero() {
		modified = created
	}
	el := root.CreateElement("dcterms:created")
	el.CreateAttr("xsi:type", "dcterms:W3CDTF")
	el.SetText(created.UTC().Format(w3cdtf))
	el = root.CreateElement("dcterms:modified")
	el.CreateAttr("xsi:type", "dcterms:W3CDTF")
	el.SetText(modified.UTC().Format(w3cdtf))

	return writeXMLToZip(zw, "docProps/core.xml", doc)
}

func (s *saver) writeAppProps(zw *zip.Writer) error {
	p := &s.wb.DocProps

	doc := newPartDoc()
	root := doc.CreateElement("Properties")
	root.CreateAttr("xmlns", nsExtendedProps)
	root.CreateAttr("xmlns:vt", nsVTypes)

	app := p.Application
	if app == "" {
		app = "Microsoft Excel"
	}
	root.CreateElement("Application").SetText(app)
	root.CreateElement("DocSecurity").SetText(strconv.Itoa(p.DocSecurity))
	root.CreateElement("ScaleCrop").SetText("false")
	if p.Company != "" {
		root.CreateElement("Company").SetText(p.Company)
	}
	if p.Manager != "" {
		root.CreateElement("Manager").SetText(p.Manager)
	}
	if p.AppVersion != "" {
		root.CreateElement("AppVersion").SetText(p.AppVersion)
	}
	root.CreateElement("LinksUpToDate").SetText("false")
	root.CreateElement("SharedDoc").SetText("false")

	pairs := root.CreateElement("HeadingPairs")
	vec := pairs.CreateElement("vt:vector")
	vec.CreateAttr("size", "2")
	vec.CreateAttr("baseType", "variant")
	vec.CreateElement("vt:variant").CreateElement("vt:lpstr").SetText("Worksheets")
	vec.CreateElement("vt:variant").CreateElement("vt:i4").SetText(strconv.Itoa(len(s.wb.Worksheets)))

	titles := root.CreateElement("TitlesOfParts")
	vec = titles.CreateElement("vt:vector")
	vec.CreateAttr("size", strconv.Itoa(len(s.wb.Worksheets)))
	vec.CreateAttr("baseType", "lpstr")
	for _, ws := range s.wb.Worksheets {
		vec.CreateElement("vt:lpstr").SetText(ws.Name)
	}

	return writeXMLToZip(zw, "docProps/app.xml", doc)
}

// parseCoreProps fills document metadata from docProps/core.xml. Namespace
// prefixes are matched by local name so renamed prefixes still load.
func parseCoreProps(data []byte, p *document.DocumentProperties) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return nil
	}
	for _, el := range root.ChildElements() {
		text := el.Text()
		switch el.Tag {
		case "title":
			p.Title = text
		case "subject":
			p.Subject = text
		case "creator":
			p.Creator = text
		case "keywords":
			p.Keywords = text
		case "description":
			p.Description = text
		case "lastModifiedBy":
			p.LastModifiedBy = text
		case "revision":
			p.Revision = text
		case "category":
			p.Category = text
		case "contentStatus":
			p.ContentStatus = text
		case "language":
			p.Language = text
		case "version":
			p.Version = text
		case "created":
			if t, err := time.Parse(w3cdtf, text); err == nil {
				p.Created = t
			}
		case "modified":
			if t, err := time.Parse(w3cdtf, text); err == nil {
				p.Modified = t
			}
		}
	}
	return nil
}

func parseAppProps(data []byte, p *document.DocumentProperties) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return nil
	}
	for _, el := range root.ChildElements() {
		text := el.Text()
		switch el.Tag {
		case "Application":
			p.Application = text
		case "AppVersion":
			p.AppVersion = text
		case "Company":
			p.Company = text
		case "Manager":
			p.Manager = text
		case "DocSecurity":
			p.DocSecurity = atoiDefault(text, 0)
		}
	}
	return nil
}

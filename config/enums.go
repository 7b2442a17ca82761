package config

// Specification of requested output type.
// ENUM(xlsx, csv, json, md)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtXlsx:
		return ".xlsx"
	case OutputFmtCsv:
		return ".csv"
	case OutputFmtJson:
		return ".json"
	case OutputFmtMd:
		return ".md"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// IsPackage reports whether the format is a full workbook package rather
// than a plain text rendition.
func (o OutputFmt) IsPackage() bool {
	return o == OutputFmtXlsx
}

// Specification of markdown table column alignment.
// ENUM(left, center, right)
type MdAlignment int

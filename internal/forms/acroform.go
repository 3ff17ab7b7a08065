package forms

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxFieldDepth bounds recursion through malformed Kids cycles
const maxFieldDepth = 16

// ReadFormFieldNames lists the fully qualified AcroForm field names of a
// fillable PDF template.
func ReadFormFieldNames(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open form template: %w", err)
	}
	defer file.Close()

	return ReadFormFieldNamesFromReader(file)
}

// ReadFormFieldNamesFromReader lists AcroForm field names from rs. A PDF
// without an AcroForm yields an empty list.
func ReadFormFieldNamesFromReader(rs io.ReadSeeker) ([]string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	names := []string{}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return names, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return names, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return names, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for _, fieldObj := range fieldsArray {
		names = collectFieldNames(ctx, fieldObj, "", 0, names)
	}
	return names, nil
}

// collectFieldNames appends the terminal field names below fieldObj. Partial
// names are joined with "." as in the AcroForm naming scheme; widget kids
// without a name of their own belong to their parent.
func collectFieldNames(ctx *model.Context, fieldObj types.Object, parent string, depth int, names []string) []string {
	if depth > maxFieldDepth {
		return names
	}

	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil || fieldDict == nil {
		return names
	}

	name := parent
	if nameObj, found := fieldDict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && partial != "" {
			if parent != "" {
				name = parent + "." + partial
			} else {
				name = partial
			}
		}
	}

	hasNamedKids := false
	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kids, err := ctx.DereferenceArray(kidsObj); err == nil {
			for _, kid := range kids {
				if kidDict, err := ctx.DereferenceDict(kid); err == nil && kidDict != nil {
					if _, named := kidDict.Find("T"); named {
						hasNamedKids = true
						names = collectFieldNames(ctx, kid, name, depth+1, names)
					}
				}
			}
		}
	}

	if !hasNamedKids && name != "" && name != parent {
		names = append(names, name)
	}
	return names
}

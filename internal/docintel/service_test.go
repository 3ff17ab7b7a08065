package docintel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-docintel/internal/forms"
	"github.com/a3tai/mcp-docintel/internal/intelligence"
	"github.com/a3tai/mcp-docintel/internal/profile"
	"github.com/a3tai/mcp-docintel/internal/source"
)

const aadhaarText = `GOVT OF INDIA
Remy Baastin Rayappan
DOB: 15/08/1999
Male
1234 5678 9012`

const marksheetText = "STATE BOARD MARK SHEET\nRoll No: 482913\nSchool Name: Govt Higher Secondary School  Class: XII"

type fakeRunner struct{ stdout string }

func (r fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return []byte(r.stdout), nil, nil
}

func newTestService(t *testing.T, withProfiles bool) (*Service, string) {
	t.Helper()
	dir := t.TempDir()

	src, err := source.NewService(source.Config{
		DocumentDirectory: dir,
		MaxFileSize:       1024 * 1024,
	}, source.WithRunner(fakeRunner{stdout: "PERMANENT ACCOUNT NUMBER\nABCDE1234F"}))
	require.NoError(t, err)

	var opts []Option
	if withProfiles {
		store, err := profile.Open(profile.Options{Path: filepath.Join(t.TempDir(), "profiles.db")})
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		opts = append(opts, WithProfiles(store))
	}

	svc, err := NewService(intelligence.NewEngine(), src, opts...)
	require.NoError(t, err)
	return svc, dir
}

func TestNewServiceValidation(t *testing.T) {
	src, err := source.NewService(source.Config{MaxFileSize: 1})
	require.NoError(t, err)

	_, err = NewService(nil, src)
	assert.Error(t, err)
	_, err = NewService(intelligence.NewEngine(), nil)
	assert.Error(t, err)
}

func TestAnalyzeWithLabels(t *testing.T) {
	svc, _ := newTestService(t, false)

	result := svc.Analyze(AnalyzeRequest{Text: marksheetText, Labels: []string{"Roll No", "School Name", ""}})

	assert.Equal(t, intelligence.DocumentTypeUnknown, result.DocumentType)
	require.Len(t, result.DynamicFields, 2)
	assert.Equal(t, "482913", result.DynamicFields[0].ValueOr(""))
	assert.Equal(t, "Govt Higher Secondary School", result.DynamicFields[1].ValueOr(""))
}

func TestExtractField(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.ExtractField(ExtractFieldRequest{Text: marksheetText, Label: "  "})
	assert.ErrorIs(t, err, ErrEmptyLabel)

	res, err := svc.ExtractField(ExtractFieldRequest{Text: marksheetText, Label: "Roll No"})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "482913", *res.Value)

	res, err = svc.ExtractField(ExtractFieldRequest{Text: marksheetText, Label: "Blood Group"})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Value)
}

func TestReadFileAndBytes(t *testing.T) {
	svc, dir := newTestService(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aadhaar.txt"), []byte(aadhaarText), 0o644))

	res, err := svc.ReadFile(context.Background(), ReadFileRequest{Path: "aadhaar.txt"})
	require.NoError(t, err)
	assert.Equal(t, source.MethodText, res.Document.Method)
	assert.Equal(t, intelligence.DocumentTypeAadhaar, res.Result.DocumentType)
	assert.Equal(t, "1234 5678 9012", res.Result.Fields[intelligence.FieldUID])

	_, err = svc.ReadFile(context.Background(), ReadFileRequest{Path: "../escape.txt"})
	assert.ErrorIs(t, err, source.ErrOutsideDirectory)

	res, err = svc.ReadBytes(context.Background(), "pan.png", []byte("png"), nil)
	require.NoError(t, err)
	assert.Equal(t, intelligence.DocumentTypePAN, res.Result.DocumentType)
	assert.Equal(t, "ABCDE1234F", res.Result.Fields[intelligence.FieldPANNumber])

	res, err = svc.ReadUpload(context.Background(), "scan", "image/jpeg", []byte("jpg"), []string{"Account Number"})
	require.NoError(t, err)
	assert.Equal(t, intelligence.DocumentTypePAN, res.Result.DocumentType)
	assert.Len(t, res.Result.DynamicFields, 1)
}

func TestMapForm(t *testing.T) {
	svc, _ := newTestService(t, false)

	res, err := svc.MapForm(FormMapRequest{
		Text:   aadhaarText,
		Email:  "remy@example.com",
		Mobile: "9876543210",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusMapped, res.Status)
	assert.Equal(t, "pan_form_49a", res.Schema)
	assert.Equal(t, forms.Record{
		forms.KeyApplicationType: "New PAN - Indian Citizen (Form 49A)",
		forms.KeyCategory:        "INDIVIDUAL",
		forms.KeyTitle:           "Shri",
		forms.KeyLastName:        "Rayappan",
		forms.KeyFirstName:       "Remy",
		forms.KeyMiddleName:      "Baastin",
		forms.KeyDOB:             "15/08/1999",
		forms.KeyEmail:           "remy@example.com",
		forms.KeyMobile:          "9876543210",
	}, res.Record)
	require.NotNil(t, res.Document)
	assert.Equal(t, intelligence.DocumentTypeAadhaar, res.Document.DocumentType)
	require.Len(t, res.Ordered, 9)
	assert.Equal(t, [2]string{forms.KeyApplicationType, "New PAN - Indian Citizen (Form 49A)"}, res.Ordered[0])
}

func TestMapFormExplicitFieldsOverrideText(t *testing.T) {
	svc, _ := newTestService(t, false)

	res, err := svc.MapForm(FormMapRequest{
		Text:   aadhaarText,
		Fields: map[string]string{"name": "Anita Devi", "gender": "Female", "dob": "01/01/2000"},
		Scheme: "Permanent Account Number",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anita", res.Record[forms.KeyFirstName])
	assert.Equal(t, "", res.Record[forms.KeyMiddleName])
	assert.Equal(t, "Devi", res.Record[forms.KeyLastName])
	assert.Equal(t, "Smt", res.Record[forms.KeyTitle])
	assert.Equal(t, "01/01/2000", res.Record[forms.KeyDOB])
	assert.Equal(t, "", res.Record[forms.KeyEmail])
}

func TestMapFormSchemes(t *testing.T) {
	svc, _ := newTestService(t, false)

	res, err := svc.MapForm(FormMapRequest{Scheme: "Post-Matric Scholarship"})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Contains(t, res.Message, "not available yet")
	assert.Nil(t, res.Record)

	_, err = svc.MapForm(FormMapRequest{Scheme: "Ration Card"})
	assert.ErrorIs(t, err, forms.ErrNoSchema)
}

func TestCheckForm(t *testing.T) {
	svc, _ := newTestService(t, false)

	res, err := svc.CheckForm(FormCheckRequest{FormMapRequest: FormMapRequest{Text: aadhaarText}})
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, forms.FillPartialSuccess, res.Report.Status)
	assert.Equal(t, []string{"Email ID", "Mobile Number"}, res.Report.Missing)

	res, err = svc.CheckForm(FormCheckRequest{FormMapRequest: FormMapRequest{
		Text:   aadhaarText,
		Email:  "remy@example.com",
		Mobile: "9876543210",
	}})
	require.NoError(t, err)
	assert.Equal(t, forms.FillSuccess, res.Report.Status)
	assert.Equal(t, "Form pre-filled successfully.", res.Report.Message)

	res, err = svc.CheckForm(FormCheckRequest{FormMapRequest: FormMapRequest{Scheme: "scholarship"}})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Nil(t, res.Report)

	_, err = svc.CheckForm(FormCheckRequest{Template: "/etc/passwd.pdf"})
	assert.ErrorIs(t, err, source.ErrOutsideDirectory)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()

	disabled, _ := newTestService(t, false)
	_, err := disabled.UpdateProfile(ctx, ProfileUpdateRequest{Key: "k", Text: aadhaarText})
	assert.ErrorIs(t, err, ErrProfilesDisabled)
	_, err = disabled.GetProfile(ctx, "k")
	assert.ErrorIs(t, err, ErrProfilesDisabled)
	_, err = disabled.AttachResult(ctx, "k", intelligence.ExtractionResult{})
	assert.ErrorIs(t, err, ErrProfilesDisabled)

	svc, _ := newTestService(t, true)
	assert.True(t, svc.ProfilesEnabled())

	_, err = svc.UpdateProfile(ctx, ProfileUpdateRequest{Key: "k", Text: " "})
	assert.ErrorIs(t, err, ErrEmptyText)

	res, err := svc.UpdateProfile(ctx, ProfileUpdateRequest{Key: "Remy@Example.com", Text: aadhaarText})
	require.NoError(t, err)
	assert.Equal(t, "remy@example.com", res.Profile.ID)
	assert.Equal(t, intelligence.DocumentTypeAadhaar, res.Document.DocumentType)

	p, err := svc.GetProfile(ctx, "remy@example.com")
	require.NoError(t, err)
	assert.Equal(t, "15/08/1999", p.Fields["dob"])
	assert.Len(t, p.Documents, 1)

	_, err = svc.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestServerInfo(t *testing.T) {
	svc, dir := newTestService(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aadhaar.txt"), []byte(aadhaarText), 0o644))

	info := svc.ServerInfo(context.Background(), "mcp-docintel", "1.0.0")

	assert.Equal(t, "mcp-docintel", info.ServerName)
	assert.Equal(t, dir, info.DocumentDirectory)
	assert.False(t, info.ProfilesEnabled)
	assert.Equal(t, []string{
		"Aadhaar Card", "Income Certificate", "Community Certificate",
		"Driving Licence", "PAN Card", "Unknown",
	}, info.DocumentTypes)
	assert.Contains(t, info.SupportedFormats, ".pdf")
	require.Len(t, info.DirectoryContents, 1)
	assert.Equal(t, "aadhaar.txt", info.DirectoryContents[0].Name)

	var toolNames []string
	for _, tool := range info.AvailableTools {
		toolNames = append(toolNames, tool.Name)
		assert.NotEmpty(t, tool.Parameters, tool.Name)
	}
	assert.NotContains(t, toolNames, "profile_update")
	assert.Contains(t, toolNames, "document_analyze")
	assert.NotContains(t, info.UsageGuidance, "profile_update")
	assert.Contains(t, info.UsageGuidance, "1MB")

	withProfiles, _ := newTestService(t, true)
	info = withProfiles.ServerInfo(context.Background(), "x", "y")
	assert.True(t, info.ProfilesEnabled)
	assert.Contains(t, info.UsageGuidance, "profile_update")
}

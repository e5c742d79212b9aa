package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fabian-RY/rsat-code/errors"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipelines.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validDefinition = `
<pipelines>
  <pipeline name="analysis">
    <component name="peaks" processor="BEDParser">
      <param name="InputFile" value="peaks.bed"/>
    </component>
    <component name="motifs" processor="MotifScan" previous="peaks">
      <param name="ThreadNumber" value="4"/>
    </component>
    <component name="report" processor="BEDOutput" previous="motifs"/>
  </pipeline>
</pipelines>`

func TestParseValidDefinition(t *testing.T) {
	defs, err := ParseDefinition(writeDefinition(t, validDefinition))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "analysis", def.Name)
	require.Len(t, def.Components, 3)

	peaks, motifs, report := def.Components[0], def.Components[1], def.Components[2]
	assert.Equal(t, "1_peaks", peaks.Prefix())
	assert.Equal(t, "peaks.bed", peaks.Params["InputFile"])

	require.Len(t, def.Entries, 1)
	assert.Same(t, peaks, def.Entries[0])

	assert.Equal(t, []*Component{peaks}, motifs.Previous)
	assert.Equal(t, []*Component{motifs}, peaks.Next)
	assert.Equal(t, []*Component{motifs}, report.Previous)
}

func TestParseMalformedXML(t *testing.T) {
	_, err := ParseDefinition(writeDefinition(t, "<pipelines><pipeline"))
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
}

func TestParseEmptyPipelineList(t *testing.T) {
	_, err := ParseDefinition(writeDefinition(t, "<pipelines></pipelines>"))
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
	assert.Contains(t, err.Error(), "no pipeline defined")
}

func TestParseUnknownPredecessor(t *testing.T) {
	_, err := ParseDefinition(writeDefinition(t, `
<pipelines>
  <pipeline name="p">
    <component name="a" processor="BEDParser" previous="ghost"/>
  </pipeline>
</pipelines>`))
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
	assert.Contains(t, err.Error(), "ghost")
}

func TestParseDuplicateComponentName(t *testing.T) {
	_, err := ParseDefinition(writeDefinition(t, `
<pipelines>
  <pipeline name="p">
    <component name="a" processor="BEDParser"/>
    <component name="a" processor="BEDOutput"/>
  </pipeline>
</pipelines>`))
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
	assert.Contains(t, err.Error(), "duplicate component name")
}

func TestParseCyclicGraph(t *testing.T) {
	_, err := ParseDefinition(writeDefinition(t, `
<pipelines>
  <pipeline name="p">
    <component name="seed" processor="BEDParser"/>
    <component name="a" processor="MotifScan" previous="seed b"/>
    <component name="b" processor="MotifScan" previous="a"/>
  </pipeline>
</pipelines>`))
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
	assert.Contains(t, err.Error(), "cycle")
}

func TestParseAllCyclicHasNoEntry(t *testing.T) {
	_, err := ParseDefinition(writeDefinition(t, `
<pipelines>
  <pipeline name="p">
    <component name="a" processor="X" previous="b"/>
    <component name="b" processor="Y" previous="a"/>
  </pipeline>
</pipelines>`))
	require.Error(t, err)
	assert.True(t, errors.IsDefinitionError(err))
	assert.Contains(t, err.Error(), "no entry component")
}

func TestCanStart(t *testing.T) {
	defs, err := ParseDefinition(writeDefinition(t, validDefinition))
	require.NoError(t, err)

	def := defs[0]
	peaks, motifs := def.Components[0], def.Components[1]

	assert.True(t, peaks.CanStart(), "entry component can always start")
	assert.False(t, motifs.CanStart())

	peaks.MarkCompleted()
	assert.True(t, motifs.CanStart())

	peaks.ResetCompletion()
	assert.False(t, motifs.CanStart())
}

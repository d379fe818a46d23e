package dbqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTypedParametersEmptyInput(t *testing.T) {
	params, err := ParseTypedParameters("")
	require.NoError(t, err)
	require.Nil(t, params)
}

func TestParseTypedParametersEmptyObject(t *testing.T) {
	params, err := ParseTypedParameters("{}")
	require.NoError(t, err)
	require.Empty(t, params)
}

func TestParseTypedParametersAllBuckets(t *testing.T) {
	raw := `{"INTEGER": {"age": 7}, "STRING": {"name": "hydrogen"}, "BOOLEAN": {"active": true}, "FLOAT": {"ratio": 1.5}}`
	params, err := ParseTypedParameters(raw)
	require.NoError(t, err)
	require.Len(t, params, 4)

	byName := make(map[string]Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}
	require.Equal(t, int64(7), byName["age"].Value)
	require.Equal(t, "hydrogen", byName["name"].Value)
	require.Equal(t, true, byName["active"].Value)
	require.Equal(t, 1.5, byName["ratio"].Value)
}

func TestParseTypedParametersUnknownBucketFails(t *testing.T) {
	_, err := ParseTypedParameters(`{"DATE": {"when": "today"}}`)
	require.ErrorIs(t, err, ErrParameterNotFound)
}

func TestParseTypedParametersInvalidJSONFails(t *testing.T) {
	_, err := ParseTypedParameters(`{not json`)
	require.ErrorIs(t, err, ErrParameterNotFound)
}

func TestParseTypedParametersNonObjectFails(t *testing.T) {
	_, err := ParseTypedParameters(`[1,2,3]`)
	require.ErrorIs(t, err, ErrParameterNotFound)
}

func TestConvertNamedToPositionalPostgresStyle(t *testing.T) {
	params := ParameterList{
		{Name: "id", Type: "INTEGER", Value: int64(3)},
		{Name: "name", Type: "STRING", Value: "printer"},
	}
	sql, ordered, err := ConvertNamedToPositional("SELECT * FROM jobs WHERE id = :id AND name = :name", params, StylePostgres)
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM jobs WHERE id = $1 AND name = $2", sql)
	require.Equal(t, params, ordered)
}

func TestConvertNamedToPositionalQuestionStyle(t *testing.T) {
	params := ParameterList{{Name: "id", Type: "INTEGER", Value: int64(3)}}
	sql, ordered, err := ConvertNamedToPositional("SELECT * FROM jobs WHERE id = :id", params, StyleQuestion)
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM jobs WHERE id = ?", sql)
	require.Equal(t, params, ordered)
}

func TestConvertNamedToPositionalPreservesRepeatedOccurrenceOrder(t *testing.T) {
	params := ParameterList{{Name: "id", Type: "INTEGER", Value: int64(3)}}
	sql, ordered, err := ConvertNamedToPositional("id = :id OR parent_id = :id", params, StylePostgres)
	require.NoError(t, err)
	require.Equal(t, "id = $1 OR parent_id = $2", sql)
	require.Len(t, ordered, 2)
}

func TestConvertNamedToPositionalSkipsDoubleColonCast(t *testing.T) {
	sql, ordered, err := ConvertNamedToPositional("SELECT id::text FROM jobs", nil, StylePostgres)
	require.NoError(t, err)
	require.Equal(t, "SELECT id::text FROM jobs", sql)
	require.Empty(t, ordered)
}

func TestConvertNamedToPositionalMissingParameterFails(t *testing.T) {
	_, _, err := ConvertNamedToPositional("SELECT * FROM jobs WHERE id = :id", nil, StylePostgres)
	require.ErrorIs(t, err, ErrParameterNotFound)
}

func TestStyleForEngine(t *testing.T) {
	require.Equal(t, StylePostgres, StyleForEngine(EnginePostgres))
	require.Equal(t, StyleQuestion, StyleForEngine(EngineMySQL))
	require.Equal(t, StyleQuestion, StyleForEngine(EngineSQLite))
	require.Equal(t, StyleQuestion, StyleForEngine(EngineDB2))
}

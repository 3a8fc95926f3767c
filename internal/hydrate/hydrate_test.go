package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/goliatone/go-postfix/value"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_settings.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[databaseSettings](buildOptions(tc)...)

			ctx := Context{Postfix: "dev", Path: tc.Path}
			if tc.Mode == "text" {
				ctx.Mode = ModeText
			}

			result, err := decoder.Decode(ctx, fragmentOf(t, tc.Input))

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded settings mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestFixtureMismatchesAreTyped(t *testing.T) {
	decoder := NewDecoder[databaseSettings]()
	_, err := decoder.Decode(Context{Path: "database"}, value.NewObject(value.Field{Key: "pool", Value: value.String("big")}))
	var mismatchErr *TypeMismatchError
	if !errors.As(err, &mismatchErr) {
		t.Fatalf("expected TypeMismatchError, got %T: %v", err, err)
	}
	if mismatchErr.Path != "database" {
		t.Fatalf("expected path database, got %q", mismatchErr.Path)
	}
}

func TestTextModeScalars(t *testing.T) {
	ctx := Context{Path: "key", Mode: ModeText}

	if got, err := NewDecoder[int]().Decode(ctx, value.String("42")); err != nil || got != 42 {
		t.Fatalf("int: got %v, %v", got, err)
	}
	if got, err := NewDecoder[uint16]().Decode(ctx, value.String("65535")); err != nil || got != 65535 {
		t.Fatalf("uint16: got %v, %v", got, err)
	}
	if got, err := NewDecoder[float32]().Decode(ctx, value.String("1.5")); err != nil || got != 1.5 {
		t.Fatalf("float32: got %v, %v", got, err)
	}
	if got, err := NewDecoder[bool]().Decode(ctx, value.String("true")); err != nil || !got {
		t.Fatalf("bool: got %v, %v", got, err)
	}
	if got, err := NewDecoder[string]().Decode(ctx, value.String("Ahoj")); err != nil || got != "Ahoj" {
		t.Fatalf("string: got %v, %v", got, err)
	}
	if got, err := NewDecoder[value.Char]().Decode(ctx, value.String("č")); err != nil || got != 'č' {
		t.Fatalf("char: got %v, %v", got, err)
	}
	if got, err := NewDecoder[*int]().Decode(ctx, value.String("7")); err != nil || got == nil || *got != 7 {
		t.Fatalf("*int: got %v, %v", got, err)
	}
	if got, err := NewDecoder[any]().Decode(ctx, value.String("raw")); err != nil || got != "raw" {
		t.Fatalf("any: got %v, %v", got, err)
	}
}

func TestTextModeFailures(t *testing.T) {
	ctx := Context{Path: "key", Mode: ModeText}

	tests := []struct {
		name  string
		run   func() error
		cause error
	}{
		{name: "int8 overflow", run: func() error {
			_, err := NewDecoder[int8]().Decode(ctx, value.String("128"))
			return err
		}, cause: ErrOverflow},
		{name: "negative uint", run: func() error {
			_, err := NewDecoder[uint]().Decode(ctx, value.String("-1"))
			return err
		}, cause: strconv.ErrSyntax},
		{name: "not a number", run: func() error {
			_, err := NewDecoder[int]().Decode(ctx, value.String("five"))
			return err
		}, cause: strconv.ErrSyntax},
		{name: "char too long", run: func() error {
			_, err := NewDecoder[value.Char]().Decode(ctx, value.String("ab"))
			return err
		}, cause: ErrCharLength},
		{name: "char empty", run: func() error {
			_, err := NewDecoder[value.Char]().Decode(ctx, value.String(""))
			return err
		}, cause: ErrCharLength},
		{name: "slice target", run: func() error {
			_, err := NewDecoder[[]string]().Decode(ctx, value.String("a,b"))
			return err
		}, cause: ErrStructuredText},
		{name: "map target", run: func() error {
			_, err := NewDecoder[map[string]string]().Decode(ctx, value.NewObject())
			return err
		}, cause: ErrStructuredText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var mismatchErr *TypeMismatchError
			if !errors.As(err, &mismatchErr) {
				t.Fatalf("expected TypeMismatchError, got %T: %v", err, err)
			}
			if !errors.Is(err, tt.cause) {
				t.Fatalf("expected cause %v, got %v", tt.cause, err)
			}
		})
	}
}

func TestTypedModeScalars(t *testing.T) {
	ctx := Context{Path: "key"}

	if got, err := NewDecoder[int64]().Decode(ctx, value.Int(5432)); err != nil || got != 5432 {
		t.Fatalf("int64: got %v, %v", got, err)
	}
	if got, err := NewDecoder[float64]().Decode(ctx, value.Int(2)); err != nil || got != 2 {
		t.Fatalf("float64 from int: got %v, %v", got, err)
	}
	if got, err := NewDecoder[string]().Decode(ctx, value.Float(0.25)); err != nil || got != "0.25" {
		t.Fatalf("string from float: got %v, %v", got, err)
	}
	if _, err := NewDecoder[bool]().Decode(ctx, value.Int(1)); err == nil {
		t.Fatalf("expected bool from number to fail")
	}
	if _, err := NewDecoder[value.Char]().Decode(ctx, value.Int(1)); !errors.Is(err, ErrCharLength) {
		t.Fatalf("expected char from number to fail with ErrCharLength, got %v", err)
	}
	if _, err := NewDecoder[uint8]().Decode(ctx, value.Int(-1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestTypedModeStructuredTargets(t *testing.T) {
	ctx := Context{Path: "servers"}
	servers := value.Array(value.String("server1"), value.String("server2"), value.String("dev-server1"))

	got, err := NewDecoder[[]string]().Decode(ctx, servers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"server1", "server2", "dev-server1"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %v, got %v", want, got)
	}

	asMap, err := NewDecoder[map[string]any]().Decode(Context{Path: "database"}, value.NewObject(
		value.Field{Key: "host", Value: value.String("localhost")},
		value.Field{Key: "port", Value: value.Int(5432)},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asMap["host"] != "localhost" || asMap["port"] != int64(5432) {
		t.Fatalf("unexpected map %#v", asMap)
	}
}

func TestValueTargetsPassThrough(t *testing.T) {
	fragment := value.NewObject(value.Field{Key: "a", Value: value.Int(1)})

	got, err := NewDecoder[value.Value]().Decode(Context{Mode: ModeText}, fragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(fragment) {
		t.Fatalf("expected fragment back, got %v", got.ToAny())
	}

	type holder struct {
		Raw value.Value `json:"raw"`
	}
	h, err := NewDecoder[holder]().Decode(Context{}, value.NewObject(value.Field{Key: "raw", Value: fragment}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.Raw.Equal(fragment) {
		t.Fatalf("expected nested fragment, got %v", h.Raw.ToAny())
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[databaseSettings] {
	options := []DecoderOption[databaseSettings]{}

	for _, optName := range tc.Options {
		switch optName {
		case "error_unused":
			options = append(options, WithErrorUnused[databaseSettings]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "split_address":
			options = append(options, WithPreHook[databaseSettings](splitAddressPreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "default_label":
			options = append(options, WithPostHook[databaseSettings](defaultLabelPostHook))
		}
	}

	if tc.CustomDecoder != "" {
		switch tc.CustomDecoder {
		case "host_only":
			options = append(options, WithCustomDecoder[databaseSettings](hostOnlyDecoder))
		}
	}

	return options
}

func splitAddressPreHook(_ Context, fragment value.Value) (value.Value, error) {
	address, ok := fragment.Lookup("address")
	if !ok {
		return fragment, nil
	}
	host, portText, found := strings.Cut(address.Text(), ":")
	if !found {
		return value.Null, fmt.Errorf("invalid address %q", address.Text())
	}
	port, err := strconv.ParseInt(portText, 10, 64)
	if err != nil {
		return value.Null, err
	}
	return value.NewObject(
		value.Field{Key: "host", Value: value.String(host)},
		value.Field{Key: "port", Value: value.Int(port)},
	), nil
}

func defaultLabelPostHook(ctx Context, settings *databaseSettings) error {
	if settings == nil {
		return errors.New("settings is nil")
	}
	if settings.Label == "" {
		settings.Label = ctx.Path
	}
	return nil
}

func hostOnlyDecoder(_ Context, fragment value.Value) (databaseSettings, error) {
	host, ok := fragment.Lookup("host")
	if !ok {
		return databaseSettings{}, errors.New("missing host")
	}
	return databaseSettings{Host: host.Text()}, nil
}

func fragmentOf(t *testing.T, raw json.RawMessage) value.Value {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		t.Fatalf("decode fragment: %v", err)
	}
	v, err := value.FromAny(decoded)
	if err != nil {
		t.Fatalf("convert fragment: %v", err)
	}
	return v
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name          string           `json:"name"`
	Path          string           `json:"path"`
	Mode          string           `json:"mode"`
	Input         json.RawMessage  `json:"input"`
	Expect        databaseSettings `json:"expect"`
	ExpectErr     string           `json:"expectErr"`
	PreHooks      []string         `json:"preHooks"`
	PostHooks     []string         `json:"postHooks"`
	Options       []string         `json:"options"`
	CustomDecoder string           `json:"customDecoder"`
}

type databaseSettings struct {
	Host     string       `json:"host"`
	Port     int          `json:"port"`
	Debug    bool         `json:"debug"`
	Replicas []string     `json:"replicas"`
	Label    string
	Pool     poolSettings `json:"pool"`
	Weights  []float64    `json:"weights"`
}

type poolSettings struct {
	Min int8 `json:"min"`
	Max int8 `json:"max"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}

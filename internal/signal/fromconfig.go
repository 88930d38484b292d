package signal

import (
	"fmt"

	"github.com/openbeamline/signalbind/internal/channel"
	"github.com/openbeamline/signalbind/internal/infrastructure/config"
)

// BuildSchemas constructs schemas declared in configuration.
//
// Schemas may extend each other by name; a parent must be declared
// before (or resolvable before) its children. Resolution is multi-pass
// so declaration order in the file does not matter, only the absence of
// cycles.
func BuildSchemas(configs []config.SchemaConfig) (map[string]*Schema, error) {
	schemas := make(map[string]*Schema, len(configs))
	remaining := append([]config.SchemaConfig(nil), configs...)

	for len(remaining) > 0 {
		progressed := false
		var deferred []config.SchemaConfig

		for _, sc := range remaining {
			if sc.Extends != "" {
				if _, ok := schemas[sc.Extends]; !ok {
					deferred = append(deferred, sc)
					continue
				}
			}

			schema, err := buildSchema(sc, schemas)
			if err != nil {
				return nil, fmt.Errorf("schema %s: %w", sc.Name, err)
			}
			schemas[sc.Name] = schema
			progressed = true
		}

		if !progressed {
			names := make([]string, 0, len(deferred))
			for _, sc := range deferred {
				names = append(names, sc.Name)
			}
			return nil, fmt.Errorf("%w: unresolvable extends chain involving %v", ErrNilSchema, names)
		}
		remaining = deferred
	}

	return schemas, nil
}

func buildSchema(sc config.SchemaConfig, schemas map[string]*Schema) (*Schema, error) {
	b := NewSchema(sc.Name)
	if sc.Extends != "" {
		b = b.Extend(schemas[sc.Extends])
	}
	if len(sc.Doc) > 0 {
		b = b.Doc(sc.Doc...)
	}

	for _, fc := range sc.Fields {
		var opts []Option
		if fc.Writable {
			opts = append(opts, Writable())
		}
		if fc.Readback {
			opts = append(opts, WithReadback())
		}
		if fc.ReadbackSuffix != "" {
			opts = append(opts, ReadbackSuffix(fc.ReadbackSuffix))
		}
		if fc.String {
			opts = append(opts, StringValued())
		}
		if fc.Doc != "" {
			opts = append(opts, WithDoc(fc.Doc))
		}
		b = b.Field(fc.Name, fc.Template, opts...)
	}

	for _, gc := range sc.Groups {
		b = b.Group(gc.Name, gc.Members...)
	}

	return b.Build()
}

// BuildDevices instantiates devices declared in configuration against
// the given schemas and channel client.
func BuildDevices(configs []config.DeviceConfig, schemas map[string]*Schema, client channel.Client, logger Logger) ([]*Device, error) {
	devices := make([]*Device, 0, len(configs))

	for _, dc := range configs {
		schema, ok := schemas[dc.Schema]
		if !ok {
			return nil, fmt.Errorf("device %s: %w: schema %s not declared", dc.Name, ErrNilSchema, dc.Schema)
		}

		opts := []DeviceOption{}
		if dc.Name != "" {
			opts = append(opts, WithName(dc.Name))
		}
		if dc.Alias != "" {
			opts = append(opts, WithAlias(dc.Alias))
		}
		if len(dc.ReadFields) > 0 {
			opts = append(opts, WithReadFields(dc.ReadFields...))
		}
		if logger != nil {
			opts = append(opts, WithLogger(logger))
		}

		device, err := NewDevice(schema, client, dc.Base, opts...)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", dc.Name, err)
		}
		devices = append(devices, device)
	}

	return devices, nil
}

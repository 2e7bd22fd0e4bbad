package config

const (
	defaultConfigPath          = "~/.config/lass/config.toml"
	defaultDataDir             = "~/.local/share/lass"
	defaultLogDir              = "~/.local/share/lass/logs"
	defaultTimezone            = "Europe/London"
	defaultScheduleStartHour   = 7
	defaultMetadataCacheSecs   = 300
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultFillerTitle         = "Jukebox"
	defaultFillerDescription   = "Non-stop music from the station playout system."
	defaultFillerBlock         = "jukebox"
	defaultMaintenanceMessage  = "The website is undergoing maintenance; some pages may be unavailable."
	defaultOvernightBlockStart = 0
	defaultDaytimeBlockStart   = 7
	defaultEveningBlockStart   = 19
)

var defaultSecondYearTerms = []string{"spring", "summer"}

func defaultBlocks() Blocks {
	return Blocks{
		Range: []RangeBlock{
			{Hour: defaultOvernightBlockStart, Block: "overnight"},
			{Hour: defaultDaytimeBlockStart, Block: "daytime"},
			{Hour: defaultEveningBlockStart, Block: "evening"},
		},
		Name: []NameBlock{
			{Pattern: "*news*", Block: "news"},
		},
		Types: map[string]map[string]string{
			"overnight": {"type": "regular", "label": "Overnight"},
			"daytime":   {"type": "regular", "label": "Daytime"},
			"evening":   {"type": "regular", "label": "Evening"},
			"news":      {"type": "news", "label": "News"},
			"jukebox":   {"type": "jukebox", "label": "Jukebox"},
		},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Time: Time{
			Timezone:          defaultTimezone,
			ScheduleStartHour: defaultScheduleStartHour,
			SecondYearTerms:   append([]string(nil), defaultSecondYearTerms...),
		},
		Blocks: defaultBlocks(),
		Filler: Filler{
			Block: defaultFillerBlock,
			Metadata: FillerMetadata{
				Text: map[string]string{
					"title":       defaultFillerTitle,
					"description": defaultFillerDescription,
				},
			},
		},
		Service: Service{
			Maintenance: Maintenance{Message: defaultMaintenanceMessage},
		},
		Metadata: Metadata{
			DefaultCacheSeconds: defaultMetadataCacheSecs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

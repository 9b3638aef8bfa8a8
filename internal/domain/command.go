package domain

// CommandFile — содержимое конфигурационного файла с командами.
//
// Файл читается один раз при старте (JSON, YAML или TOML):
//
//	{
//	    "apiVersions": {"S3": "2006-03-01"},
//	    "commands": [
//	        {"objectType": "S3", "method": "CreateBucket", "params": {...}, "resultsID": "bucket"}
//	    ]
//	}
type CommandFile struct {
	// APIVersions — глобальный селектор версий API по семействам capability.
	APIVersions map[string]string `json:"apiVersions,omitempty" yaml:"apiVersions,omitempty" toml:"apiVersions,omitempty"`

	// Commands — упорядоченный список команд.
	Commands []Command `json:"commands" yaml:"commands" toml:"commands"`
}

// Command — одна единица работы: вызов метода Method у ObjectType с Params.
//
// Params может содержать директивы ({ID.FIELD}, {%ENV%}, <file.zip>),
// которые разрешаются перед вызовом. Сама Command не мутирует:
// разрешение возвращает новое дерево параметров.
type Command struct {
	// ObjectType — семейство capability (например, "S3", "HTTP").
	ObjectType string `json:"objectType" yaml:"objectType" toml:"objectType"`

	// Method — метод внутри семейства (например, "PutObject").
	Method string `json:"method" yaml:"method" toml:"method"`

	// Params — дерево параметров: map, slice, строки и скаляры.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`

	// ResultsID — ключ, под которым результат публикуется в хранилище результатов.
	// Пустой ResultsID означает, что результат не публикуется.
	ResultsID string `json:"resultsID,omitempty" yaml:"resultsID,omitempty" toml:"resultsID,omitempty"`

	// ExpectedResults — ожидаемые значения свойств результата.
	ExpectedResults map[string]any `json:"expectedResults,omitempty" yaml:"expectedResults,omitempty" toml:"expectedResults,omitempty"`
}

// Capability возвращает полное имя вызываемой capability: "ObjectType.Method".
func (c *Command) Capability() string {
	return c.ObjectType + "." + c.Method
}

// HasExpectations возвращает true, если у команды есть ожидаемые результаты.
func (c *Command) HasExpectations() bool {
	return len(c.ExpectedResults) > 0
}

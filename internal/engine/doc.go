// Package engine содержит движок разрешения директив в параметрах команд.
//
// Включает:
//   - directive.go — токенизатор языка директив ({ID.FIELD}, {%ENV%}, <file>)
//   - resolve.go   — рекурсивный обход дерева параметров и подстановка
//   - payload.go   — бинарная подстановка файлов и сборка zip-архивов
//   - store.go     — хранилище результатов run (только добавление)
//   - parser.go    — разбор файла команд (JSON/YAML/TOML) и статическая проверка
//
// # Язык директив
//
//	{%NAME%}                  переменная окружения, скобки поглощаются
//	%NAME%                    переменная окружения на месте
//	{ID.FIELD}                свойство результата
//	{ID.FIELD[N].SUB}         свойство N-го элемента массива
//	{ID.FIELD[$KEY$VALUE].SUB} свойство первого элемента с KEY == VALUE
//	{!...                     литеральная {
//	<a.zip>                   содержимое архива как []byte
//	<a.py|b.py|dir>           новый zip-архив из файлов и каталогов
//	<!...>                    литеральная строка <...>
//
// Порядок для каждой строки: окружение, ссылки на результаты, бинарная
// подстановка. Ссылки ищутся только в тексте шаблона: подставленные
// значения (переменных окружения и результатов) повторно не сканируются.
// Бинарная подстановка определяется по шаблону, пути разрешаются по одному.
// Любая неразрешимая директива — ошибка.
package engine

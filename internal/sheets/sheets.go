// Package sheets содержит клиент табличного сервиса, в котором бот
// хранит записи и зеркало состояний диалогов.
package sheets

import "context"

// TableService — контракт табличного сервиса.
// Таблица адресуется именем листа и диапазоном ячеек вида "A:D";
// индексы строк единичные, как в самом сервисе.
type TableService interface {
	// EnsureTable создает лист, если его нет. Идемпотентна.
	EnsureTable(ctx context.Context, name string) (created bool, err error)

	// GetRange возвращает строки диапазона. Отсутствующий лист или
	// пустой диапазон — это пустой результат, а не ошибка.
	GetRange(ctx context.Context, table, cellRange string) ([][]string, error)

	// AppendRow добавляет строку в конец диапазона.
	AppendRow(ctx context.Context, table, cellRange string, row []string) error

	// UpdateRow перезаписывает существующую строку по ее индексу.
	UpdateRow(ctx context.Context, table string, rowIndex int, cellRange string, row []string) error

	// DeleteRow удаляет строку по ее индексу.
	DeleteRow(ctx context.Context, table string, rowIndex int) error
}

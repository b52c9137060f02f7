package memory

import "context"

// TxManager транзакции поверх Store с тем же контрактом, что и txmanager.TransactionManager
type TxManager struct {
	store *Store
}

// Do выполняет fn под мьютексом хранилища. При ошибке или панике данные возвращаются к снимку
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()

	defer func() {
		if p := recover(); p != nil {
			m.store.restore(snap)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}

	return nil
}

// DoSerializable в памяти все транзакции и так сериализованы
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

package domain

import "errors"

// ErrNotFound возвращается когда запись отсутствует.
var ErrNotFound = errors.New("запись не найдена")

// ErrProviderUnavailable возвращается когда у провайдера нет ключа API.
var ErrProviderUnavailable = errors.New("провайдер недоступен: ключ API не настроен")

// ErrNoProviders возвращается когда не настроен ни один провайдер LLM.
var ErrNoProviders = errors.New("не настроен ни один провайдер LLM")

// ErrDiscoveryRunning возвращается при попытке запустить поиск поверх идущего.
var ErrDiscoveryRunning = errors.New("поиск уже выполняется")

// ErrEmptyTargets возвращается когда для поиска не выбрано ни одной цели.
var ErrEmptyTargets = errors.New("не выбрано ни одной цели поиска")

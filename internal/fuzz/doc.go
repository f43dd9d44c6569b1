// Package fuzztests houses Go fuzz harnesses for the hint pipeline: catalog
// parsing, body rendering and reference substitution. Its goal is to smoke
// test robustness and guard against panics or broken span bookkeeping on
// arbitrary inputs.
//
// Назначение: прогонять произвольные байты через catalog.Parse, render и
// subst.Rewrite и проверять инварианты testkit.
//
// Не делает: запись кэша, обход директорий книги, выполнение CLI.
//
// Зависимости: internal/source, internal/catalog, internal/render,
// internal/subst, internal/testkit.

package fuzztests

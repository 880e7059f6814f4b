package extract

// Example is one entry of the formula gallery.
type Example struct {
	Name  string
	Latex string
}

// Category groups gallery examples.
type Category struct {
	Title    string
	Examples []Example
}

// Gallery lists formulas that exercise mode detection and the engines.
func Gallery() []Category {
	return []Category{
		{
			Title: "Basic LaTeX",
			Examples: []Example{
				{"Fractions", `\frac{a}{b} = \frac{numerator}{denominator}`},
				{"Exponents & Subscripts", `x^2 + y_1 = z_{max}`},
				{"Greek Letters", `\alpha + \beta = \gamma, \Delta x = \pi r^2`},
				{"Square Roots", `\sqrt{x} + \sqrt[3]{y} = \sqrt{a^2 + b^2}`},
			},
		},
		{
			Title: "Advanced Mathematics",
			Examples: []Example{
				{"Integrals", `\int_{0}^{\infty} e^{-x^2} dx = \frac{\sqrt{\pi}}{2}`},
				{"Summations", `\sum_{n=1}^{\infty} \frac{1}{n^2} = \frac{\pi^2}{6}`},
				{"Limits", `\lim_{x \to 0} \frac{\sin x}{x} = 1`},
				{"Complex Expressions", `f(x) = \frac{1}{\sqrt{2\pi\sigma^2}} e^{-\frac{(x-\mu)^2}{2\sigma^2}}`},
			},
		},
		{
			Title: "Matrices & Arrays",
			Examples: []Example{
				{"Simple Matrix", `\begin{pmatrix} a & b \\ c & d \end{pmatrix}`},
				{"Determinant", `\begin{vmatrix} a & b \\ c & d \end{vmatrix} = ad - bc`},
				{"Array with Cases", `f(x) = \begin{cases} x^2 & \text{if } x \geq 0 \\ -x^2 & \text{if } x < 0 \end{cases}`},
				{"System of Equations", `\begin{align} x + y &= 5 \\ 2x - y &= 1 \end{align}`},
			},
		},
		{
			Title: "Tables",
			Examples: []Example{
				{"Basic Table", `\begin{array}{|c|c|} \hline \text{Number} & \text{Type} \\ \hline \sqrt{2} & \text{Irrational} \\ \frac{1}{2} & \text{Rational} \\ \hline \end{array}`},
			},
		},
	}
}
